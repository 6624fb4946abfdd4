package pattern

import "testing"

func TestMaskBasics(t *testing.T) {
	m := NewMask(5, []int{1, 3})

	if m.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", m.Len())
	}
	if m.BindCount() != 2 {
		t.Fatalf("BindCount() = %d, want 2", m.BindCount())
	}
	if !m.Has(1) || !m.Has(3) {
		t.Error("expected positions 1 and 3 to be set")
	}
	if m.Has(0) || m.Has(2) || m.Has(4) {
		t.Error("expected positions 0, 2, 4 to be unset")
	}
	if got := m.Positions(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Positions() = %v, want [1 3]", got)
	}
}

func TestMaskEmpty(t *testing.T) {
	m := NewMask(4, nil)
	if !m.Empty() {
		t.Error("expected a mask with no positions to be Empty")
	}
	m2 := m.With(2)
	if m2.Empty() {
		t.Error("expected With to produce a non-empty mask")
	}
	if !m2.Has(2) {
		t.Error("expected With(2) to set position 2")
	}
	if m.Has(2) {
		t.Error("With must not mutate the receiver")
	}
}

func TestMaskString(t *testing.T) {
	m := NewMask(4, []int{0, 2})
	if got, want := m.String(), "1010"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMaskPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range position")
		}
	}()
	NewMask(3, []int{5})
}

func TestLetterTupleEqual(t *testing.T) {
	a := NewLetterTuple([]int{1, 2, 3})
	b := NewLetterTuple([]int{1, 2, 3})
	c := NewLetterTuple([]int{1, 2, 4})

	if !a.Equal(b) {
		t.Error("expected equal tuples to compare equal")
	}
	if a.Equal(c) {
		t.Error("expected different tuples to compare unequal")
	}
	if a.Key() != b.Key() {
		t.Errorf("Key() mismatch for equal tuples: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Error("expected different tuples to produce different keys")
	}
}

func TestLetterTupleGraphemesIsDefensiveCopy(t *testing.T) {
	tup := NewLetterTuple([]int{1, 2, 3})
	cp := tup.Graphemes()
	cp[0] = 99

	if tup.At(0) == 99 {
		t.Error("mutating Graphemes() output must not affect the tuple")
	}
}

func TestNewMatchKeyDistinguishesMaskAndTuple(t *testing.T) {
	m1 := NewMask(4, []int{0})
	m2 := NewMask(4, []int{1})
	t1 := NewLetterTuple([]int{5})
	t2 := NewLetterTuple([]int{6})

	k1 := NewMatchKey(4, m1, t1)
	k2 := NewMatchKey(4, m2, t1)
	k3 := NewMatchKey(4, m1, t2)

	if k1 == k2 {
		t.Error("expected different masks to produce different keys")
	}
	if k1 == k3 {
		t.Error("expected different letter tuples to produce different keys")
	}
	if k1 != NewMatchKey(4, m1, t1) {
		t.Error("expected identical (length, mask, tuple) to produce equal keys")
	}
}

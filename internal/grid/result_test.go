package grid

import (
	"testing"

	"lesmotsdatche/internal/alphabet"
)

func TestToResultDimensionsAndCells(t *testing.T) {
	alpha, err := alphabet.For("en")
	if err != nil {
		t.Fatalf("alphabet.For(en): %v", err)
	}
	g, err := Parse([]string{"__X", "___"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	res := g.ToResult(alpha, nil)
	if res.Rows != 2 || res.Cols != 3 {
		t.Fatalf("Result dims = %dx%d, want 2x3", res.Rows, res.Cols)
	}
	if len(res.Cells) != 6 {
		t.Fatalf("len(Cells) = %d, want 6", len(res.Cells))
	}
	if res.Cells[2].Type != "block" {
		t.Errorf("expected cell index 2 to be a block")
	}
	if len(res.Slots) != len(g.Slots) {
		t.Errorf("Result has %d slots, want %d", len(res.Slots), len(g.Slots))
	}
}

func TestToResultIncludesMeanings(t *testing.T) {
	alpha, _ := alphabet.For("en")
	g, err := Parse([]string{"__"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	meanings := map[int]string{0: "a greeting"}
	res := g.ToResult(alpha, meanings)
	if res.Slots[0].Meaning != "a greeting" {
		t.Errorf("Meaning = %q, want %q", res.Slots[0].Meaning, "a greeting")
	}
}

func TestFromResultRoundTrips(t *testing.T) {
	alpha, err := alphabet.For("en")
	if err != nil {
		t.Fatalf("alphabet.For(en): %v", err)
	}
	g, err := Parse([]string{"__X", "___"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := g.Slot(0)
	word := make([]int, s.Length)
	for i := range word {
		word[i] = i % alpha.Size()
	}
	if _, err := g.Bind(s.ID, word); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	res := g.ToResult(alpha, nil)
	g2, err := FromResult(res, alpha)
	if err != nil {
		t.Fatalf("FromResult: %v", err)
	}

	if g2.Rows != g.Rows || g2.Cols != g.Cols {
		t.Fatalf("round trip changed dimensions: got %dx%d, want %dx%d", g2.Rows, g2.Cols, g.Rows, g.Cols)
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			orig := g.Cell(r, c)
			rebuilt := g2.Cell(r, c)
			if orig.Type != rebuilt.Type {
				t.Fatalf("cell (%d,%d) type mismatch after round trip", r, c)
			}
			if orig.Bound != rebuilt.Bound {
				t.Fatalf("cell (%d,%d) bound state mismatch after round trip", r, c)
			}
			if orig.Bound && orig.Grapheme != rebuilt.Grapheme {
				t.Fatalf("cell (%d,%d) grapheme mismatch after round trip: got %d, want %d", r, c, rebuilt.Grapheme, orig.Grapheme)
			}
		}
	}
}

func TestFromResultRejectsUnknownGrapheme(t *testing.T) {
	alpha, _ := alphabet.For("en")
	res := Result{
		Rows: 1,
		Cols: 2,
		Cells: []CellJSON{
			{Type: "letter", Letter: "9"},
			{Type: "letter"},
		},
	}
	if _, err := FromResult(res, alpha); err == nil {
		t.Fatal("expected an error for an unknown grapheme")
	}
}

func TestFromResultRejectsEmpty(t *testing.T) {
	alpha, _ := alphabet.For("en")
	if _, err := FromResult(Result{}, alpha); err != ErrEmptyGrid {
		t.Fatalf("expected ErrEmptyGrid, got %v", err)
	}
}

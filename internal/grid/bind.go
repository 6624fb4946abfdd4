package grid

import (
	"errors"

	"lesmotsdatche/internal/fill"
)

// Invariant errors surfaced while binding/unbinding a slot.
var (
	ErrWordLength = errors.New("grid: word length does not match slot length")
	ErrNotBound   = errors.New("grid: crossing cell expected to be bound but is not")
)

// Bind writes word (one grapheme index per cell) into the slot's
// cells and returns, for every crossing slot affected, its ID. Only
// neighbours whose shared cell gains a letter from this bind go
// stale; a crossing that already carried a letter beforehand cannot
// have changed, and refreshing its neighbour anyway would pay a full
// lexicon query for nothing. Bind does not check the word against a
// lexicon; that is the solver's job -- Grid only enforces shape
// invariants. Binding a nil word is always a caller bug, not a
// recoverable input error, so it reports fill.ErrBindNone rather than
// ErrWordLength.
func (g *Grid) Bind(slotID int, word []int) ([]int, error) {
	if word == nil {
		return nil, fill.ErrBindNone
	}
	s := g.Slot(slotID)
	if len(word) != s.Length {
		return nil, ErrWordLength
	}

	affected := g.crossingNeighbors(s, func(_ Crossing, thisIdx int) bool {
		pos := s.Cells[thisIdx]
		return !g.Cell(pos.Row, pos.Col).Bound
	})

	for i, pos := range s.Cells {
		g.setCell(pos.Row, pos.Col, Cell{Type: CellLetter, Grapheme: word[i], Bound: true})
	}
	s.Assigned = true

	return affected, nil
}

// Unbind clears every cell of the slot that is not also held by a
// still-assigned crossing slot, and returns the affected neighbour
// slot IDs. A still-assigned neighbour keeps its letter at the shared
// cell and is unaffected; only crossings this slot alone was feeding
// go stale. The unbound slot itself goes stale too; callers (the
// Solver) refresh its possibility matrix along with the returned
// neighbours.
func (g *Grid) Unbind(slotID int) []int {
	s := g.Slot(slotID)
	s.Assigned = false
	neighbors := g.crossingNeighbors(s, func(c Crossing, _ int) bool {
		other, _, _ := c.OtherSlot(slotID)
		return !g.Slot(other).Assigned
	})

	keep := make(map[int]bool, len(s.CrossingIdx))
	for _, ci := range s.CrossingIdx {
		crossing := g.Crossings[ci]
		otherSlotID, _, thisIdx := crossing.OtherSlot(slotID)
		if g.Slot(otherSlotID).Assigned {
			keep[thisIdx] = true
		}
	}

	for i, pos := range s.Cells {
		if keep[i] {
			continue
		}
		g.setCell(pos.Row, pos.Col, Cell{Type: CellLetter})
	}

	return neighbors
}

// Reset clears every slot's binding, failed-word blacklist and
// possibility matrix while preserving topology -- used between
// independent solve attempts on the same grid skeleton.
func (g *Grid) Reset() {
	for i := range g.cells {
		if g.cells[i].Type == CellLetter {
			g.cells[i] = Cell{Type: CellLetter}
		}
	}
	for i := range g.Slots {
		g.Slots[i].Assigned = false
		g.Slots[i].FailedWords = nil
		g.Slots[i].Possibility = nil
	}
}

// MarkFailed records wordIndex in slotID's failed-word blacklist, so
// later MatchingExcluding/possibility-matrix queries at this slot skip
// it until the next ResetFailedWords/Reset.
func (g *Grid) MarkFailed(slotID, wordIndex int) {
	s := g.Slot(slotID)
	if s.FailedWords == nil {
		s.FailedWords = make(map[int]struct{})
	}
	s.FailedWords[wordIndex] = struct{}{}
}

// SeedCell binds a single cell directly, bypassing slot-length checks.
// Used to carry known letters into a freshly parsed or cloned grid
// before a solve begins.
func (g *Grid) SeedCell(row, col int, grapheme int) {
	g.setCell(row, col, Cell{Type: CellLetter, Grapheme: grapheme, Bound: true})
}

// IsSlotBound reports whether every cell of the slot is currently bound.
func (g *Grid) IsSlotBound(slotID int) bool {
	return g.IsFilled(g.Slot(slotID))
}

// crossingNeighbors returns the distinct slots crossing s whose
// crossing the include predicate reports as affected.
func (g *Grid) crossingNeighbors(s *Slot, include func(c Crossing, thisIdx int) bool) []int {
	seen := make(map[int]bool, len(s.CrossingIdx))
	var out []int
	for _, ci := range s.CrossingIdx {
		other, _, thisIdx := g.Crossings[ci].OtherSlot(s.ID)
		if !include(g.Crossings[ci], thisIdx) {
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

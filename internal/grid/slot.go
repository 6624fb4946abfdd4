package grid

import (
	"fmt"

	"lesmotsdatche/internal/fill"
)

// Slot is a maximal run of fillable cells in one direction, length
// >= 2. A Slot never holds a pointer to another Slot or to a Crossing
// value; it only holds indices into its owning Grid's Crossings
// slice, so Grid can be deep-copied (e.g. for a solve attempt)
// without re-linking pointers.
type Slot struct {
	ID          int
	Direction   Direction
	Start       Position
	Length      int
	Cells       []Position
	CrossingIdx []int // indices into Grid.Crossings touching this slot

	// Assigned reports whether a word is currently bound to this slot,
	// as opposed to its cells merely being covered by crossing slots'
	// letters. Unbind keys its keep-this-letter decision on the
	// neighbour's assignment, not on its cell state.
	Assigned bool

	// FailedWords is the set of word indices tried and rolled back at
	// this slot since the last reset. Keyed by word index for O(1)
	// membership checks; fill.Lexicon.MatchingExcluding takes it
	// directly.
	FailedWords map[int]struct{}

	// Possibility is the slot's |crosses| x |Sigma| possibility matrix:
	// Possibility[i][k] counts how many words still bindable to this
	// slot would impose grapheme k at the crossing CrossingIdx[i].
	// Built by Grid.BuildPossibilityMatrix, refreshed by
	// Grid.UpdatePossibilities -- the solver is the only caller that
	// triggers either, so refresh ordering stays explicit.
	Possibility [][]uint32
}

// ResetFailedWords clears the slot's failed-word blacklist, used when
// a grid is reused across solve attempts or a slot is freshly
// selected by the solver.
func (s *Slot) ResetFailedWords() {
	s.FailedWords = nil
}

// Key returns a stable geometric identifier for the slot, e.g.
// "across_3_1_5" for a length-5 across slot anchored at column 3,
// row 1 (1-based). Unlike ID it does not depend on discovery order,
// so it survives re-parsing the same layout.
func (s *Slot) Key() string {
	return fmt.Sprintf("%s_%d_%d_%d", s.Direction, s.Start.Col+1, s.Start.Row+1, s.Length)
}

// Crossing is a single shared cell between one across and one down
// slot. It is stored once in Grid.Crossings and referenced by both
// slots via CrossingIdx, so neither side owns the other.
type Crossing struct {
	AcrossSlot int
	DownSlot   int
	AcrossIdx  int // position within the across slot's Cells
	DownIdx    int // position within the down slot's Cells
}

// OtherSlot returns the slot ID on the other side of the crossing
// from slotID, and that slot's index within it.
func (c Crossing) OtherSlot(slotID int) (otherSlotID, otherIndex, thisIndex int) {
	if slotID == c.AcrossSlot {
		return c.DownSlot, c.DownIdx, c.AcrossIdx
	}
	return c.AcrossSlot, c.AcrossIdx, c.DownIdx
}

// CrossingValue returns the grapheme currently written at the
// crossing's shared cell, or ok=false when neither side has placed a
// letter there.
func (g *Grid) CrossingValue(ci int) (grapheme int, ok bool) {
	c := g.Crossings[ci]
	pos := g.Slot(c.AcrossSlot).Cells[c.AcrossIdx]
	cell := g.Cell(pos.Row, pos.Col)
	return cell.Grapheme, cell.Bound
}

// IsHalfBound reports whether exactly one of the crossing's two slots
// is currently assigned a word.
func (g *Grid) IsHalfBound(ci int) bool {
	return g.crossingAssignedSides(ci) == 1
}

// IsFullyBound reports whether both of the crossing's slots are
// currently assigned.
func (g *Grid) IsFullyBound(ci int) bool {
	return g.crossingAssignedSides(ci) == 2
}

func (g *Grid) crossingAssignedSides(ci int) int {
	c := g.Crossings[ci]
	n := 0
	if g.Slot(c.AcrossSlot).Assigned {
		n++
	}
	if g.Slot(c.DownSlot).Assigned {
		n++
	}
	return n
}

// NewCrossing builds the Crossing between two slots: it sorts the pair
// into (across, down), computes the unique cell their Cells lists
// share, and records each side's position within it. It fails with
// fill.ErrSameOrientation if a and b run the same way,
// fill.ErrIncoherent if they share no cell, and fill.ErrNonEuclidean if
// they share more than one -- both slots would have to overlap along
// an entire run, which a well-formed grid never produces.
func NewCrossing(a, b *Slot) (Crossing, error) {
	if a.Direction == b.Direction {
		return Crossing{}, fill.ErrSameOrientation
	}
	across, down := a, b
	if a.Direction == Down {
		across, down = b, a
	}

	acrossIdx, downIdx, shared := -1, -1, 0
	for i, ap := range across.Cells {
		for j, dp := range down.Cells {
			if ap == dp {
				acrossIdx, downIdx = i, j
				shared++
			}
		}
	}
	switch shared {
	case 0:
		return Crossing{}, fill.ErrIncoherent
	case 1:
		return Crossing{AcrossSlot: across.ID, DownSlot: down.ID, AcrossIdx: acrossIdx, DownIdx: downIdx}, nil
	default:
		return Crossing{}, fill.ErrNonEuclidean
	}
}

// AddCrossing validates and registers the Crossing between a and b,
// appending it to g.Crossings and both slots' CrossingIdx. It fails
// with fill.ErrDuplicateCrossing if the two slots already share a
// registered crossing.
func (g *Grid) AddCrossing(a, b *Slot) (int, error) {
	for _, ci := range a.CrossingIdx {
		other, _, _ := g.Crossings[ci].OtherSlot(a.ID)
		if other == b.ID {
			return -1, fill.ErrDuplicateCrossing
		}
	}

	c, err := NewCrossing(a, b)
	if err != nil {
		return -1, err
	}

	idx := len(g.Crossings)
	g.Crossings = append(g.Crossings, c)
	a.CrossingIdx = append(a.CrossingIdx, idx)
	b.CrossingIdx = append(b.CrossingIdx, idx)
	return idx, nil
}

// discoverSlots scans the block layout for across and down runs, then
// links crossings between them.
func (g *Grid) discoverSlots() {
	g.Slots = nil
	g.Crossings = nil

	id := 0
	// Across runs.
	for r := 0; r < g.Rows; r++ {
		c := 0
		for c < g.Cols {
			if g.Cell(r, c).Type == CellBlock {
				c++
				continue
			}
			startCol := c
			var cells []Position
			for c < g.Cols && g.Cell(r, c).Type == CellLetter {
				cells = append(cells, Position{Row: r, Col: c})
				c++
			}
			if len(cells) >= 2 {
				g.Slots = append(g.Slots, Slot{
					ID:        id,
					Direction: Across,
					Start:     Position{Row: r, Col: startCol},
					Length:    len(cells),
					Cells:     cells,
				})
				id++
			}
		}
	}

	// Down runs.
	for c := 0; c < g.Cols; c++ {
		r := 0
		for r < g.Rows {
			if g.Cell(r, c).Type == CellBlock {
				r++
				continue
			}
			startRow := r
			var cells []Position
			for r < g.Rows && g.Cell(r, c).Type == CellLetter {
				cells = append(cells, Position{Row: r, Col: c})
				r++
			}
			if len(cells) >= 2 {
				g.Slots = append(g.Slots, Slot{
					ID:        id,
					Direction: Down,
					Start:     Position{Row: startRow, Col: c},
					Length:    len(cells),
					Cells:     cells,
				})
				id++
			}
		}
	}

	g.linkCrossings()
}

// linkCrossings finds every pair of slots that share a cell and
// registers the crossing between them via AddCrossing -- the same
// validating constructor callers use to build crossings directly.
func (g *Grid) linkCrossings() {
	byPos := make(map[Position][]int) // position -> slot indices occupying it
	for i := range g.Slots {
		for _, pos := range g.Slots[i].Cells {
			byPos[pos] = append(byPos[pos], i)
		}
	}

	seenPairs := make(map[[2]int]bool)
	for _, occupants := range byPos {
		if len(occupants) != 2 {
			continue // edge or isolated cell, not a crossing
		}
		a, b := occupants[0], occupants[1]
		if a > b {
			a, b = b, a
		}
		if seenPairs[[2]int{a, b}] {
			continue
		}
		seenPairs[[2]int{a, b}] = true

		sa, sb := &g.Slots[a], &g.Slots[b]
		if sa.Direction == sb.Direction {
			continue // two parallel slots sharing a cell cannot happen in a well-formed grid
		}
		if _, err := g.AddCrossing(sa, sb); err != nil {
			// discoverSlots only ever scans orthogonal runs that meet
			// in exactly one cell; any error here means the block
			// layout itself is malformed, which discoverSlots's own
			// scan cannot produce.
			panic(err)
		}
	}
}

// Pattern returns the grid's current bound/unbound state along a
// slot's cells, as (bound positions, grapheme at each bound position)
// -- callers turn this into a pattern.Mask/pattern.LetterTuple pair.
func (g *Grid) Pattern(s *Slot) (positions []int, graphemes []int) {
	for i, pos := range s.Cells {
		cell := g.Cell(pos.Row, pos.Col)
		if cell.Bound {
			positions = append(positions, i)
			graphemes = append(graphemes, cell.Grapheme)
		}
	}
	return positions, graphemes
}

// IsFilled reports whether every cell of the slot is bound.
func (g *Grid) IsFilled(s *Slot) bool {
	for _, pos := range s.Cells {
		if !g.Cell(pos.Row, pos.Col).Bound {
			return false
		}
	}
	return true
}

// Slot looks up a slot by ID.
func (g *Grid) Slot(id int) *Slot {
	return &g.Slots[id]
}

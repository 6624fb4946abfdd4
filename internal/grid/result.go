package grid

import (
	"encoding/json"
	"fmt"

	"lesmotsdatche/internal/alphabet"
)

// CellJSON is the wire representation of one grid cell. Letter holds
// a locale-agnostic grapheme string rather than a single A-Z rune, so
// multi-codepoint letters survive serialization intact.
type CellJSON struct {
	Type    string `json:"type"`
	Letter  string `json:"letter,omitempty"`
	Number  int    `json:"number,omitempty"`
}

// SlotJSON is the wire representation of one solved or partially
// solved slot.
type SlotJSON struct {
	ID        int    `json:"id"`
	Direction string `json:"direction"`
	Number    int    `json:"number"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Length    int    `json:"length"`
	Meaning   string `json:"meaning,omitempty"`
}

// Result is the top-level grid JSON result: dimensions, the filled
// cells, and per-slot metadata a caller can zip with its own clue
// text.
type Result struct {
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Cells []CellJSON `json:"cells"` // row-major, len == Rows*Cols
	Slots []SlotJSON `json:"slots"`
}

// ToResult renders the grid's current state into a Result, using
// alpha to turn grapheme indices back into their textual form.
// meanings, if non-nil, maps slot ID to a caller-supplied clue/label
// string; the fill engine itself never produces one.
func (g *Grid) ToResult(alpha *alphabet.Alphabet, meanings map[int]string) Result {
	numbers := g.Numbers()

	cells := make([]CellJSON, 0, g.Rows*g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			cell := g.Cell(r, c)
			cj := CellJSON{Number: numbers[Position{Row: r, Col: c}]}
			if cell.Type == CellBlock {
				cj.Type = "block"
			} else {
				cj.Type = "letter"
				if cell.Bound {
					cj.Letter = alpha.Grapheme(cell.Grapheme)
				}
			}
			cells = append(cells, cj)
		}
	}

	slots := make([]SlotJSON, 0, len(g.Slots))
	for i := range g.Slots {
		s := &g.Slots[i]
		slots = append(slots, SlotJSON{
			ID:        s.ID,
			Direction: s.Direction.String(),
			Number:    s.Number(numbers),
			Row:       s.Start.Row,
			Col:       s.Start.Col,
			Length:    s.Length,
			Meaning:   meanings[s.ID],
		})
	}

	return Result{Rows: g.Rows, Cols: g.Cols, Cells: cells, Slots: slots}
}

// MarshalJSON-friendly entry point.
func (g *Grid) MarshalResult(alpha *alphabet.Alphabet, meanings map[int]string) ([]byte, error) {
	return json.Marshal(g.ToResult(alpha, meanings))
}

// FromResult rebuilds a Grid from a Result, re-deriving slots and
// crossings from the cell layout and re-binding any letters present.
// A grid serialized with ToResult and rebuilt here has the same slot
// set and cell states as the original.
func FromResult(res Result, alpha *alphabet.Alphabet) (*Grid, error) {
	if res.Rows <= 0 || res.Cols <= 0 || len(res.Cells) != res.Rows*res.Cols {
		return nil, ErrEmptyGrid
	}

	lines := make([]string, res.Rows)
	type pending struct {
		row, col int
		grapheme string
	}
	var letters []pending

	for r := 0; r < res.Rows; r++ {
		row := make([]byte, res.Cols)
		for c := 0; c < res.Cols; c++ {
			cj := res.Cells[r*res.Cols+c]
			if cj.Type == "block" {
				row[c] = 'X'
			} else {
				row[c] = '_'
				if cj.Letter != "" {
					letters = append(letters, pending{row: r, col: c, grapheme: cj.Letter})
				}
			}
		}
		lines[r] = string(row)
	}

	g, err := Parse(lines)
	if err != nil {
		return nil, err
	}

	for _, p := range letters {
		idx := alpha.IndexOf(p.grapheme)
		if idx < 0 {
			return nil, fmt.Errorf("grid: unknown grapheme %q at (%d,%d): %w", p.grapheme, p.row, p.col, alphabet.ErrUnknownLetter)
		}
		g.setCell(p.row, p.col, Cell{Type: CellLetter, Grapheme: idx, Bound: true})
	}

	return g, nil
}

package grid

import "testing"

func TestParseBasic(t *testing.T) {
	g, err := Parse([]string{"__X", "___", "X__"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Rows != 3 || g.Cols != 3 {
		t.Fatalf("dimensions = %dx%d, want 3x3", g.Rows, g.Cols)
	}
	if g.Cell(0, 2).Type != CellBlock {
		t.Error("expected (0,2) to be a block")
	}
	if g.Cell(1, 1).Type != CellLetter {
		t.Error("expected (1,1) to be a letter cell")
	}
}

func TestParseStripsUnknownCharacters(t *testing.T) {
	g, err := Parse([]string{"a_Xb", "c__d"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Cols != 2 {
		t.Fatalf("cols = %d, want 2 (a/b/c/d stripped before parsing)", g.Cols)
	}
	if g.Cell(0, 1).Type != CellBlock {
		t.Error("expected (0,1) to be a block")
	}
}

func TestParseRaggedRowsArePaddedWithBlocks(t *testing.T) {
	g, err := Parse([]string{"___", "__"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Cols != 3 {
		t.Fatalf("cols = %d, want 3 (max row width)", g.Cols)
	}
	if g.Cell(1, 2).Type != CellBlock {
		t.Error("expected the short row's missing cell to be treated as blocked")
	}
}

func TestParseEmptyGridErrors(t *testing.T) {
	if _, err := Parse(nil); err != ErrEmptyGrid {
		t.Fatalf("expected ErrEmptyGrid for nil input, got %v", err)
	}
	if _, err := Parse([]string{""}); err != ErrEmptyGrid {
		t.Fatalf("expected ErrEmptyGrid for empty row, got %v", err)
	}
}

func TestInBounds(t *testing.T) {
	g, _ := Parse([]string{"__", "__"})
	if !g.InBounds(0, 0) || !g.InBounds(1, 1) {
		t.Error("expected (0,0) and (1,1) to be in bounds")
	}
	if g.InBounds(2, 0) || g.InBounds(0, -1) {
		t.Error("expected out-of-range coordinates to be rejected")
	}
}

func TestParseBitmapMatchesLineForm(t *testing.T) {
	fromLines, err := Parse([]string{"__X", "___"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fromBitmap, err := ParseBitmap(3, 2, "__X___")
	if err != nil {
		t.Fatalf("ParseBitmap: %v", err)
	}

	if fromBitmap.Rows != fromLines.Rows || fromBitmap.Cols != fromLines.Cols {
		t.Fatalf("bitmap form parsed to %dx%d, line form to %dx%d",
			fromBitmap.Rows, fromBitmap.Cols, fromLines.Rows, fromLines.Cols)
	}
	if len(fromBitmap.Slots) != len(fromLines.Slots) {
		t.Fatalf("bitmap form found %d slots, line form %d", len(fromBitmap.Slots), len(fromLines.Slots))
	}
	for r := 0; r < fromLines.Rows; r++ {
		for c := 0; c < fromLines.Cols; c++ {
			if fromBitmap.Cell(r, c).Type != fromLines.Cell(r, c).Type {
				t.Errorf("cell (%d,%d) differs between the two forms", r, c)
			}
		}
	}
}

func TestParseBitmapRejectsZeroDimensions(t *testing.T) {
	if _, err := ParseBitmap(0, 3, "___"); err != ErrEmptyGrid {
		t.Fatalf("expected ErrEmptyGrid for zero width, got %v", err)
	}
}

func TestIsSuccess(t *testing.T) {
	g, err := Parse([]string{"__"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.IsSuccess() {
		t.Error("expected an unassigned grid to not be successful")
	}
	if _, err := g.Bind(0, []int{1, 2}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !g.IsSuccess() {
		t.Error("expected the grid to be successful once its only slot is assigned")
	}
	g.Reset()
	if g.IsSuccess() {
		t.Error("expected Reset to clear success")
	}
}

func TestRenderRoundTripsBlocks(t *testing.T) {
	lines := []string{"__X", "___"}
	g, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rendered := g.Render('_', func(int) string { return "?" })
	want := "__X\n___"
	if rendered != want {
		t.Fatalf("Render() = %q, want %q", rendered, want)
	}
}

package grid

import "strconv"

// BlockReport summarizes a grid's block layout. It backs a
// grid-validation pass at ingest time, warning about degenerate
// templates before a solve is attempted -- it never runs during
// backtracking itself.
type BlockReport struct {
	MaxConsecutiveRow    int
	MaxConsecutiveCol    int
	LargestCluster       int
	LargestClusterBounds [4]int // row, col, width, height
	TotalBlocks          int
	BlockPercentage      float64
}

// AnalyzeBlocks computes a BlockReport for the grid's current block
// layout (blocks are fixed at construction time; binding letters does
// not change them).
func (g *Grid) AnalyzeBlocks() BlockReport {
	var report BlockReport
	if g.Rows == 0 || g.Cols == 0 {
		return report
	}

	isBlock := make([][]bool, g.Rows)
	for r := range isBlock {
		isBlock[r] = make([]bool, g.Cols)
		for c := range isBlock[r] {
			if g.Cell(r, c).Type == CellBlock {
				isBlock[r][c] = true
				report.TotalBlocks++
			}
		}
	}
	report.BlockPercentage = float64(report.TotalBlocks) / float64(g.Rows*g.Cols) * 100

	for r := 0; r < g.Rows; r++ {
		run := 0
		for c := 0; c < g.Cols; c++ {
			if isBlock[r][c] {
				run++
				if run > report.MaxConsecutiveRow {
					report.MaxConsecutiveRow = run
				}
			} else {
				run = 0
			}
		}
	}
	for c := 0; c < g.Cols; c++ {
		run := 0
		for r := 0; r < g.Rows; r++ {
			if isBlock[r][c] {
				run++
				if run > report.MaxConsecutiveCol {
					report.MaxConsecutiveCol = run
				}
			} else {
				run = 0
			}
		}
	}

	report.LargestCluster, report.LargestClusterBounds = largestBlockCluster(isBlock, g.Rows, g.Cols)
	return report
}

func largestBlockCluster(isBlock [][]bool, rows, cols int) (int, [4]int) {
	maxArea := 0
	var bounds [4]int

	for r1 := 0; r1 < rows; r1++ {
		for c1 := 0; c1 < cols; c1++ {
			if !isBlock[r1][c1] {
				continue
			}
			maxWidth := 0
			for c2 := c1; c2 < cols && isBlock[r1][c2]; c2++ {
				maxWidth = c2 - c1 + 1
				for r2 := r1; r2 < rows; r2++ {
					allBlocks := true
					for c := c1; c < c1+maxWidth; c++ {
						if !isBlock[r2][c] {
							allBlocks = false
							break
						}
					}
					if !allBlocks {
						break
					}
					height := r2 - r1 + 1
					if area := maxWidth * height; area > maxArea {
						maxArea = area
						bounds = [4]int{r1, c1, maxWidth, height}
					}
				}
			}
		}
	}
	return maxArea, bounds
}

// ValidateBlockPattern reports violations of the given block-layout
// limits (0 disables a check).
func (g *Grid) ValidateBlockPattern(maxConsecutive, maxCluster int) []string {
	report := g.AnalyzeBlocks()
	var violations []string

	if maxConsecutive > 0 {
		if report.MaxConsecutiveRow > maxConsecutive {
			violations = append(violations, "row has "+strconv.Itoa(report.MaxConsecutiveRow)+
				" consecutive blocks (max "+strconv.Itoa(maxConsecutive)+")")
		}
		if report.MaxConsecutiveCol > maxConsecutive {
			violations = append(violations, "column has "+strconv.Itoa(report.MaxConsecutiveCol)+
				" consecutive blocks (max "+strconv.Itoa(maxConsecutive)+")")
		}
	}
	if maxCluster > 0 && report.LargestCluster > maxCluster {
		b := report.LargestClusterBounds
		violations = append(violations, "block cluster of "+strconv.Itoa(report.LargestCluster)+
			" cells at ("+strconv.Itoa(b[0])+","+strconv.Itoa(b[1])+") "+
			strconv.Itoa(b[2])+"x"+strconv.Itoa(b[3])+" (max "+strconv.Itoa(maxCluster)+")")
	}
	return violations
}

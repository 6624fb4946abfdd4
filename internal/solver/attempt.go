package solver

import (
	"lesmotsdatche/internal/fill"
	"lesmotsdatche/internal/grid"
)

// AttemptConfig configures a multi-attempt solve: independent
// attempts, no shared mutable state beyond the read-only Lexicon.
type AttemptConfig struct {
	Lexicon                 *fill.Lexicon
	Scorer                  Scorer
	Priority                PriorityFunc
	Seeds                   []int64 // one attempt per seed; at least one required
	MaxBacktracksPerAttempt int
	Randomize               float64 // in [0,1]; forwarded to each attempt's Solver
}

// AttemptResult pairs one attempt's Result with the grid it produced
// and the seed it used.
type AttemptResult struct {
	Seed   int64
	Grid   *grid.Grid
	Result *Result
	Err    error
}

// SolveBest runs one solve attempt per seed against a fresh copy of
// template and returns the best one: fully solved beats partially
// solved, and among fully solved attempts the one with the higher
// Result.Score wins, tiebroken by fewer backtracks. template is never
// mutated.
func SolveBest(template *grid.Grid, cfg AttemptConfig) (*AttemptResult, []AttemptResult) {
	var all []AttemptResult
	var best *AttemptResult

	for _, seed := range cfg.Seeds {
		g := cloneGrid(template)
		s := New(Config{
			Lexicon:       cfg.Lexicon,
			Scorer:        cfg.Scorer,
			Priority:      cfg.Priority,
			Seed:          seed,
			MaxBacktracks: cfg.MaxBacktracksPerAttempt,
			Randomize:     cfg.Randomize,
		})

		res, err := s.Solve(g)
		attempt := AttemptResult{Seed: seed, Grid: g, Result: res, Err: err}
		all = append(all, attempt)

		if betterAttempt(attempt, best, cfg.Lexicon) {
			a := attempt
			best = &a
		}
	}

	return best, all
}

// betterAttempt prefers a successful fill over a partial one, and
// among successful fills the higher-scoring one, tiebroken by fewer
// backtracks.
func betterAttempt(candidate AttemptResult, current *AttemptResult, lex *fill.Lexicon) bool {
	if current == nil {
		return true
	}
	candidateSolved := candidate.Err == nil
	currentSolved := current.Err == nil
	if candidateSolved != currentSolved {
		return candidateSolved
	}
	if candidate.Result == nil {
		return false
	}
	if current.Result == nil {
		return true
	}
	if candidateSolved {
		candidateScore, currentScore := candidate.Result.Score(lex), current.Result.Score(lex)
		if candidateScore != currentScore {
			return candidateScore > currentScore
		}
		return candidate.Result.Backtracks < current.Result.Backtracks
	}
	// Neither solved: prefer fewer unfilled slots.
	return len(candidate.Result.Unfilled) < len(current.Result.Unfilled)
}

// cloneGrid deep-copies a grid's cell contents and re-derives its
// slots/crossings, so each attempt starts from an identical but
// independent state; attempts never share mutable grid state.
func cloneGrid(template *grid.Grid) *grid.Grid {
	lines := make([]string, template.Rows)
	for r := 0; r < template.Rows; r++ {
		row := make([]byte, template.Cols)
		for c := 0; c < template.Cols; c++ {
			if template.Cell(r, c).Type == grid.CellBlock {
				row[c] = 'X'
			} else {
				row[c] = '_'
			}
		}
		lines[r] = string(row)
	}
	g, err := grid.Parse(lines)
	if err != nil {
		// template already parsed successfully once; same layout can't fail.
		panic(err)
	}

	copyBoundCells(template, g)
	return g
}

func copyBoundCells(src, dst *grid.Grid) {
	for r := 0; r < src.Rows; r++ {
		for c := 0; c < src.Cols; c++ {
			cell := src.Cell(r, c)
			if cell.Type == grid.CellLetter && cell.Bound {
				dst.SeedCell(r, c, cell.Grapheme)
			}
		}
	}
}

package solver

import (
	"testing"

	"lesmotsdatche/internal/grid"
)

func TestSolveBestPrefersFullySolvedAttempt(t *testing.T) {
	lex, _ := testLexicon(t)
	template, err := grid.Parse([]string{"__", "__"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	best, all := SolveBest(template, AttemptConfig{
		Lexicon:                 lex,
		Seeds:                   []int64{1, 2, 3},
		MaxBacktracksPerAttempt: 1000,
	})

	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
	if best == nil {
		t.Fatal("expected a best attempt")
	}
	if best.Err != nil {
		t.Fatalf("expected the chosen grid to be solvable, got err = %v", best.Err)
	}
}

func TestSolveBestDoesNotMutateTemplate(t *testing.T) {
	lex, _ := testLexicon(t)
	template, err := grid.Parse([]string{"__", "__"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	SolveBest(template, AttemptConfig{
		Lexicon:                 lex,
		Seeds:                   []int64{1},
		MaxBacktracksPerAttempt: 1000,
	})

	for i := range template.Slots {
		if template.IsFilled(&template.Slots[i]) {
			t.Fatal("expected the template grid to remain untouched by SolveBest")
		}
	}
}

func TestBetterAttemptPrefersSolvedOverUnsolved(t *testing.T) {
	solved := AttemptResult{Err: nil, Result: &Result{Backtracks: 5}}
	unsolved := AttemptResult{Err: ErrNoSlots, Result: &Result{Unfilled: []int{1, 2}}}

	if !betterAttempt(solved, &unsolved, nil) {
		t.Error("expected a solved attempt to beat an unsolved one")
	}
	if betterAttempt(unsolved, &solved, nil) {
		t.Error("expected an unsolved attempt to never beat a solved one")
	}
}

func TestBetterAttemptPrefersFewerBacktracks(t *testing.T) {
	fewer := AttemptResult{Result: &Result{Backtracks: 2}}
	more := AttemptResult{Result: &Result{Backtracks: 9}}

	if !betterAttempt(fewer, &more, nil) {
		t.Error("expected fewer backtracks to win among solved attempts")
	}
	if betterAttempt(more, &fewer, nil) {
		t.Error("expected more backtracks to lose among solved attempts")
	}
}

func TestBetterAttemptFirstCandidateAlwaysWinsAgainstNil(t *testing.T) {
	candidate := AttemptResult{Result: &Result{}}
	if !betterAttempt(candidate, nil, nil) {
		t.Error("expected any candidate to beat a nil current best")
	}
}

func TestCloneGridCopiesBoundCellsNotPointers(t *testing.T) {
	template, err := grid.Parse([]string{"__"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := template.Bind(0, []int{1, 2}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	clone := cloneGrid(template)
	if !clone.IsFilled(&clone.Slots[0]) {
		t.Fatal("expected clone to carry over bound cells from the template")
	}

	clone.Unbind(0)
	if !template.IsFilled(&template.Slots[0]) {
		t.Fatal("expected mutating the clone to leave the template untouched")
	}
}

// Package solver implements the constraint-directed backtracking
// search that fills a grid.Grid from a fill.Lexicon: most-constrained
// slot selection through the per-slot possibility matrices, candidate
// ranking through the crossing neighbours' viability counts, and
// multi-step rollback when the search stalls.
package solver

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"lesmotsdatche/internal/fill"
	"lesmotsdatche/internal/fill/pattern"
	"lesmotsdatche/internal/grid"
)

// ErrNoSlots is returned by Solve when the grid has no slots to fill.
var ErrNoSlots = errors.New("solver: grid has no slots")

// Scorer ranks a candidate word for a slot; higher is tried first.
// The default scorer uses the word's own Score field, which score
// reweighting feeds.
type Scorer interface {
	Score(w fill.Word, s *grid.Slot) float64
}

type defaultScorer struct{}

func (defaultScorer) Score(w fill.Word, _ *grid.Slot) float64 { return w.Score }

// PriorityFunc ranks unfilled slots for the most-constrained-first
// heuristic; lower returned value is tried first. counts maps every
// unfilled slot ID to its current candidate count. It is consulted as
// a tiebreaker once slots have already been ordered by
// grid.SolvingPriority, so it only distinguishes slots the
// possibility matrices alone cannot separate.
type PriorityFunc func(slotID int, counts map[int]int, g *grid.Grid) int

// minOfCrossingMax is the default tiebreak: a slot's own candidate
// count dominates, with the minimum crossing-neighbour candidate
// count only breaking ties between slots grid.SolvingPriority already
// ranks equal.
func minOfCrossingMax(slotID int, counts map[int]int, g *grid.Grid) int {
	own := counts[slotID]
	s := g.Slot(slotID)
	best := own
	for _, ci := range s.CrossingIdx {
		other, _, _ := g.Crossings[ci].OtherSlot(slotID)
		if c, ok := counts[other]; ok && c < best {
			best = c
		}
	}
	return own*100000 + best
}

// Config configures a Solver.
type Config struct {
	Lexicon       *fill.Lexicon
	Scorer        Scorer
	Priority      PriorityFunc
	Seed          int64   // 0 picks a nondeterministic seed
	MaxBacktracks int     // failure budget per Solve call; 0 means 10000
	Randomize     float64 // in [0,1]; 0 is fully deterministic
}

// Solver fills a grid against a lexicon via constrained backtracking.
type Solver struct {
	lexicon       *fill.Lexicon
	scorer        Scorer
	priority      PriorityFunc
	rng           *rand.Rand
	maxBacktracks int
	randomize     float64

	// Populated by Solve and surfaced on Result.
	assigns, backtracks, failed, maxDepth int
}

// New builds a Solver from cfg.
func New(cfg Config) *Solver {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	maxBT := cfg.MaxBacktracks
	if maxBT == 0 {
		maxBT = 10000
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = defaultScorer{}
	}
	priority := cfg.Priority
	if priority == nil {
		priority = minOfCrossingMax
	}

	return &Solver{
		lexicon:       cfg.Lexicon,
		scorer:        scorer,
		priority:      priority,
		rng:           rand.New(rand.NewSource(seed)),
		maxBacktracks: maxBT,
		randomize:     cfg.Randomize,
	}
}

// Result is the outcome of a Solve call.
type Result struct {
	Words       map[int][]int // slot ID -> bound grapheme sequence
	WordIndices map[int]int   // slot ID -> lexicon word index, for score aggregation
	Backtracks  int
	Assigns     int
	Failed      int
	MaxDepth    int           // deepest single multi-step backtrack taken
	Unfilled    []int         // slot IDs left unbound when the budget ran out
	Duration    time.Duration // wall-clock time the attempt took
}

// Score sums the bound words' lexicon scores, skipping NaN.
func (r *Result) Score(lex *fill.Lexicon) float64 {
	var total float64
	for _, idx := range r.WordIndices {
		s := lex.Word(idx).Score
		if s == s { // NaN != NaN
			total += s
		}
	}
	return total
}

type stackEntry struct {
	slotID int
	word   int // lexicon word index
}

// Solve fills g in place: seed every slot's
// possibility matrix, start from an arbitrary first slot (random when
// randomized, the first discovered otherwise), then repeatedly select
// the most-constrained unbound slot (grid.SolvingPriority, tiebroken
// by PriorityFunc),
// assign its best option (grid.FindBestOption) and, on failure,
// backtrack -- escalating to a multi-step backtrack once more than ten
// consecutive attempts fail in a row. It returns fill.ErrNoSolution if
// the backtrack budget is exhausted before every slot is bound; the
// caller may retry with a new seed.
func (s *Solver) Solve(g *grid.Grid) (*Result, error) {
	if len(g.Slots) == 0 {
		return nil, ErrNoSlots
	}

	start := time.Now()
	g.Reset()
	s.assigns, s.backtracks, s.failed, s.maxDepth = 0, 0, 0, 0

	for i := range g.Slots {
		g.BuildPossibilityMatrix(g.Slots[i].ID, s.lexicon)
	}

	remaining := make(map[int]bool, len(g.Slots))
	for i := range g.Slots {
		remaining[g.Slots[i].ID] = true
	}
	words := make(map[int][]int, len(g.Slots))
	wordIndices := make(map[int]int, len(g.Slots))
	var stack []stackEntry

	// The first slot is chosen arbitrarily rather than by priority:
	// nothing is bound yet, so the matrices barely separate slots, and
	// a random start is what spreads independent attempts across the
	// grid.
	seedID := g.Slots[0].ID
	if s.randomize > 0 {
		seedID = g.Slots[s.rng.Intn(len(g.Slots))].ID
	}
	delete(remaining, seedID)
	g.Slot(seedID).ResetFailedWords()

	current, haveCurrent := seedID, true
	consecutiveBacktracks := 0
	ok := true

	for {
		if s.failed > s.maxBacktracks {
			ok = false
			break
		}

		if !haveCurrent {
			if len(remaining) == 0 {
				break // every slot bound: success
			}
			id, selected := s.selectSlot(g, remaining)
			if !selected {
				ok = false
				break
			}
			delete(remaining, id)
			g.Slot(id).ResetFailedWords()
			current, haveCurrent = id, true
		}

		best, found := g.FindBestOption(current, s.lexicon, s.scoreFn(), s.rng, s.randomize)
		if !found {
			next, popped := s.backtrack(g, &stack, words, wordIndices, remaining, 1)
			if !popped {
				ok = false
				break
			}
			consecutiveBacktracks++
			if consecutiveBacktracks > 10 {
				depth := 5
				if len(stack) < depth {
					depth = len(stack)
				}
				if depth > 0 {
					n2, popped2 := s.backtrack(g, &stack, words, wordIndices, remaining, depth)
					if !popped2 {
						ok = false
						break
					}
					next = n2
					if depth > s.maxDepth {
						s.maxDepth = depth
					}
				}
				consecutiveBacktracks = 0
			}
			current, haveCurrent = next, true
			continue
		}

		w := s.lexicon.Word(best)
		affected, err := g.Bind(current, w.Graphemes)
		if err != nil {
			// A length mismatch here would be a lexicon/grid invariant
			// bug, not a search failure: the candidate came from
			// Matching against this slot's own length.
			ok = false
			break
		}
		words[current] = w.Graphemes
		wordIndices[current] = best
		stack = append(stack, stackEntry{slotID: current, word: best})
		s.assigns++
		consecutiveBacktracks = 0

		for _, n := range affected {
			g.UpdatePossibilities(n, s.lexicon)
		}

		current, haveCurrent = -1, false
	}

	result := &Result{
		Words:       words,
		WordIndices: wordIndices,
		Backtracks:  s.backtracks,
		Assigns:     s.assigns,
		Failed:      s.failed,
		MaxDepth:    s.maxDepth,
		Duration:    time.Since(start),
	}
	for i := range g.Slots {
		id := g.Slots[i].ID
		if _, bound := words[id]; !bound {
			result.Unfilled = append(result.Unfilled, id)
		}
	}

	if !ok {
		return result, fill.ErrNoSolution
	}
	return result, nil
}

// backtrack pops up to steps (slot, word) assignments off stack,
// unbinding each, recording it in the slot's failed-word blacklist and
// refreshing the possibility matrices it affects.
// It returns the most recently popped slot as the next
// current slot, or ok=false if the stack ran out first (the grid is
// unsolvable within budget).
func (s *Solver) backtrack(g *grid.Grid, stack *[]stackEntry, words map[int][]int, wordIndices map[int]int, remaining map[int]bool, steps int) (int, bool) {
	last, ok := -1, false
	for i := 0; i < steps; i++ {
		if len(*stack) == 0 {
			return -1, false
		}
		top := (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]

		affected := g.Unbind(top.slotID)
		g.MarkFailed(top.slotID, top.word)
		delete(words, top.slotID)
		delete(wordIndices, top.slotID)
		remaining[top.slotID] = true

		g.UpdatePossibilities(top.slotID, s.lexicon)
		for _, n := range affected {
			g.UpdatePossibilities(n, s.lexicon)
		}

		s.backtracks++
		s.failed++
		last, ok = top.slotID, true
	}
	return last, ok
}

// selectSlot picks the next current slot: sort remaining
// by grid.SolvingPriority ascending, tiebroken by the configured
// PriorityFunc over each slot's own candidate count, then by slot ID
// for determinism. With probability s.randomize a Poisson(lambda=2)
// offset is sampled instead of always taking the head of the list.
func (s *Solver) selectSlot(g *grid.Grid, remaining map[int]bool) (int, bool) {
	if len(remaining) == 0 {
		return 0, false
	}

	ids := make([]int, 0, len(remaining))
	counts := make(map[int]int, len(remaining))
	for id := range remaining {
		ids = append(ids, id)
		counts[id] = s.candidateCount(g, id)
	}

	primary := make(map[int]int, len(ids))
	for _, id := range ids {
		primary[id] = g.SolvingPriority(id)
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if primary[a] != primary[b] {
			return primary[a] < primary[b]
		}
		pa, pb := s.priority(a, counts, g), s.priority(b, counts, g)
		if pa != pb {
			return pa < pb
		}
		return a < b
	})

	k := 0
	if s.randomize > 0 && s.rng.Float64() < s.randomize {
		k = grid.PoissonSample(s.rng, 2)
		if k >= len(ids) {
			k = len(ids) - 1
		}
	}
	return ids[k], true
}

func (s *Solver) candidateCount(g *grid.Grid, slotID int) int {
	slot := g.Slot(slotID)
	positions, graphemes := g.Pattern(slot)
	mask := pattern.NewMask(slot.Length, positions)
	letters := pattern.NewLetterTuple(graphemes)
	matches, err := s.lexicon.Matching(mask, letters)
	if err != nil {
		return 0
	}
	return len(matches)
}

func (s *Solver) scoreFn() func(w fill.Word) float64 {
	return func(w fill.Word) float64 {
		return s.scorer.Score(w, nil)
	}
}

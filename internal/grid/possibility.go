package grid

import (
	"math"
	"sort"

	"lesmotsdatche/internal/fill"
	"lesmotsdatche/internal/fill/pattern"
)

// maskAndLetters derives a slot's current (mask, letters) pair from the
// grid's live cell state.
func (g *Grid) maskAndLetters(s *Slot) (pattern.Mask, pattern.LetterTuple) {
	positions, graphemes := g.Pattern(s)
	mask := pattern.NewMask(s.Length, positions)
	letters := pattern.NewLetterTuple(graphemes)
	return mask, letters
}

// Bindable returns the word indices currently bindable to slotID:
// those matching the slot's live pattern and not in its failed-word
// blacklist.
func (g *Grid) Bindable(slotID int, lex *fill.Lexicon) ([]int, error) {
	s := g.Slot(slotID)
	mask, letters := g.maskAndLetters(s)
	return lex.MatchingExcluding(mask, letters, s.FailedWords)
}

// BuildPossibilityMatrix allocates slotID's |crosses| x |Sigma| table
// and fills it.
func (g *Grid) BuildPossibilityMatrix(slotID int, lex *fill.Lexicon) {
	s := g.Slot(slotID)
	s.Possibility = make([][]uint32, len(s.CrossingIdx))
	g.UpdatePossibilities(slotID, lex)
}

// UpdatePossibilities recomputes, for every crossing of slotID that is
// still unbound on slotID's own side, the row of per-letter candidate
// counts bindable to slotID. Crossings
// already fixed on this side keep a stale row -- callers never consult
// it, since FindBestOption/SolvingPriority skip fixed positions.
func (g *Grid) UpdatePossibilities(slotID int, lex *fill.Lexicon) {
	s := g.Slot(slotID)
	if s.Possibility == nil {
		s.Possibility = make([][]uint32, len(s.CrossingIdx))
	}
	mask, _ := g.maskAndLetters(s)
	candidates, err := g.Bindable(slotID, lex)
	if err != nil {
		candidates = nil
	}
	for i, ci := range s.CrossingIdx {
		_, _, thisIdx := g.Crossings[ci].OtherSlot(slotID)
		if mask.Has(thisIdx) {
			continue // already fixed on this side, row unused
		}
		s.Possibility[i] = lex.LetterHistogram(candidates, thisIdx)
	}
}

// possibilityRow finds slotID's possibility row for the global crossing
// index globalCI -- the row position within slotID's own CrossingIdx
// list need not match the caller's, since each slot orders its
// crossings independently.
func (g *Grid) possibilityRow(slotID, globalCI int) []uint32 {
	s := g.Slot(slotID)
	for i, ci := range s.CrossingIdx {
		if ci == globalCI {
			if i < len(s.Possibility) {
				return s.Possibility[i]
			}
			return nil
		}
	}
	return nil
}

// unboundCrossings returns, for slotID, the list of (globalCrossingIdx,
// positionInThisSlot, neighbourSlotID) triples for crossings not yet
// fixed on slotID's own side -- the crossing set FindBestOption and
// SolvingPriority range over.
func (g *Grid) unboundCrossings(slotID int) []struct{ CI, Pos, Neighbour int } {
	s := g.Slot(slotID)
	mask, _ := g.maskAndLetters(s)
	out := make([]struct{ CI, Pos, Neighbour int }, 0, len(s.CrossingIdx))
	for _, ci := range s.CrossingIdx {
		otherSlotID, _, thisIdx := g.Crossings[ci].OtherSlot(slotID)
		if mask.Has(thisIdx) {
			continue
		}
		out = append(out, struct{ CI, Pos, Neighbour int }{CI: ci, Pos: thisIdx, Neighbour: otherSlotID})
	}
	return out
}

// SolvingPriority returns slotID's priority score:
// 0 if every crossing is already fixed on this side (must-fill-now);
// otherwise the minimum, over unbound crossings, of the maximum entry
// in the neighbour's possibility row for that crossing. Lower sorts
// first -- the most-constrained-variable heuristic on bottleneck
// crossings.
func (g *Grid) SolvingPriority(slotID int) int {
	crossings := g.unboundCrossings(slotID)
	if len(crossings) == 0 {
		return 0
	}
	best := -1
	for _, x := range crossings {
		row := g.possibilityRow(x.Neighbour, x.CI)
		max := 0
		for _, v := range row {
			if int(v) > max {
				max = int(v)
			}
		}
		if best == -1 || max < best {
			best = max
		}
	}
	return best
}

// FindBestOption chooses the next word to bind at slotID.
// It scores every candidate still matching slotID's
// current pattern by the viability it leaves on each unbound crossing
// neighbour (via that neighbour's possibility matrix), discards
// infeasible candidates (any zero contribution), keeps only the top
// 95th-percentile viability tier once the candidate pool exceeds 30,
// then breaks ties by score descending (word index ascending for
// determinism). With randomize > 0 a Poisson(lambda=2)-distributed
// offset picks among the survivors instead of always the first.
func (g *Grid) FindBestOption(slotID int, lex *fill.Lexicon, scorer func(w fill.Word) float64, rng RNG, randomize float64) (int, bool) {
	candidates, err := g.Bindable(slotID, lex)
	if err != nil || len(candidates) == 0 {
		return 0, false
	}

	crossings := g.unboundCrossings(slotID)

	type option struct {
		index     int
		viability uint64
		score     float64
	}
	options := make([]option, 0, len(candidates))

candidateLoop:
	for _, wi := range candidates {
		w := lex.Word(wi)
		var viability uint64
		for _, x := range crossings {
			row := g.possibilityRow(x.Neighbour, x.CI)
			var count uint32
			if x.Pos < len(w.Graphemes) {
				letter := w.Graphemes[x.Pos]
				if letter < len(row) {
					count = row[letter]
				}
			}
			if count == 0 {
				continue candidateLoop // infeasible: this crossing has no room left
			}
			viability += uint64(count)
		}
		options = append(options, option{index: wi, viability: viability, score: scorer(w)})
	}

	if len(options) == 0 {
		return 0, false
	}

	if len(options) > 30 {
		sorted := make([]uint64, len(options))
		for i, o := range options {
			sorted[i] = o.viability
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		threshold := sorted[int(0.95*float64(len(sorted)-1))]
		kept := options[:0]
		for _, o := range options {
			if o.viability >= threshold {
				kept = append(kept, o)
			}
		}
		options = kept
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].score != options[j].score {
			return options[i].score > options[j].score
		}
		return options[i].index < options[j].index
	})

	k := 0
	if randomize > 0 && rng != nil {
		k = PoissonSample(rng, 2)
		if k >= len(options) {
			k = len(options) - 1
		}
	}
	return options[k].index, true
}

// RNG is the minimal random source FindBestOption and the solver need
// -- an injected, seedable generator, never a process-global default.
type RNG interface {
	Float64() float64
}

// PoissonSample draws a single Poisson(lambda)-distributed integer
// using Knuth's algorithm: repeatedly multiply by uniform draws until
// the running product drops below e^-lambda. Exported so the solver's
// slot-selection step can use the same distribution FindBestOption
// uses for its randomized pick.
func PoissonSample(rng RNG, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}

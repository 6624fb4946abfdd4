// Package fill provides the indexed lexicon the crossword solver
// queries while filling a grid.
//
// Words are stored as grapheme-index sequences and bucketed by length;
// a posting list per (length, position, letter) triple turns
// fixed-position pattern lookups into sorted-set intersections instead
// of a linear scan over the word table.
package fill

import (
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"lesmotsdatche/internal/alphabet"
	"lesmotsdatche/internal/fill/pattern"
)

type postingKey struct {
	length int
	pos    int
	letter int
}

// Lexicon is an immutable, indexed dictionary. Build it once per
// language and reuse it across solves; only UseScoreVector mutates
// it, and only between solves, never concurrently with one.
type Lexicon struct {
	alphabet *alphabet.Alphabet

	words      []Word
	wordsByLen map[int][]int          // L -> sorted word indices
	posting    map[postingKey][]int   // (L,p,c) -> sorted word indices
	conceptIdx map[int]int            // ConceptID -> word index, for UseScoreVector

	matchCache *lruCache[pattern.MatchKey, []int]
}

// Option configures Lexicon construction.
type Option func(*buildConfig)

type buildConfig struct {
	cacheCapacity int
}

// WithCacheCapacity overrides the default Matching memoisation
// capacity. The floor is 10,000 entries; values below it are clamped
// up rather than rejected.
func WithCacheCapacity(n int) Option {
	return func(c *buildConfig) {
		if n < 10000 {
			n = 10000
		}
		c.cacheCapacity = n
	}
}

// NewLexicon builds a Lexicon from a tabular source. Entries whose
// label does not split cleanly into the alphabet's graphemes are
// skipped and reported, not fatal. Returns ErrEmptyLexicon if nothing
// indexed.
func NewLexicon(alpha *alphabet.Alphabet, entries []Entry, opts ...Option) (*Lexicon, []SkippedEntry, error) {
	cfg := buildConfig{cacheCapacity: 10000}
	for _, o := range opts {
		o(&cfg)
	}

	lex := &Lexicon{
		alphabet:   alpha,
		wordsByLen: make(map[int][]int),
		posting:    make(map[postingKey][]int),
		conceptIdx: make(map[int]int),
		matchCache: newLRUCache[pattern.MatchKey, []int](cfg.cacheCapacity),
	}

	var skipped []SkippedEntry

	for _, e := range entries {
		graphemes, err := alpha.Split(e.Label)
		if err != nil {
			skipped = append(skipped, SkippedEntry{Entry: e, Err: err})
			continue
		}
		if len(graphemes) < 2 {
			skipped = append(skipped, SkippedEntry{Entry: e, Err: ErrLengthMismatch})
			continue
		}

		score := e.Score
		if math.IsNaN(score) {
			score = 0
		}

		idx := len(lex.words)
		w := Word{
			Graphemes:   graphemes,
			Description: e.Description,
			Index:       idx,
			Score:       score,
			ConceptID:   e.ConceptID,
		}
		lex.words = append(lex.words, w)
		lex.conceptIdx[e.ConceptID] = idx

		L := len(graphemes)
		lex.wordsByLen[L] = append(lex.wordsByLen[L], idx)
		for p, c := range graphemes {
			key := postingKey{length: L, pos: p, letter: c}
			lex.posting[key] = append(lex.posting[key], idx)
		}
	}

	if len(lex.words) == 0 {
		return nil, skipped, ErrEmptyLexicon
	}

	for L := range lex.wordsByLen {
		slices.Sort(lex.wordsByLen[L])
	}
	// Posting lists are already built in ascending word-index order
	// since words are appended in source order with strictly
	// increasing indices.

	return lex, skipped, nil
}

// Size returns the number of indexed words.
func (lex *Lexicon) Size() int { return len(lex.words) }

// Alphabet returns the alphabet this lexicon was built against.
func (lex *Lexicon) Alphabet() *alphabet.Alphabet { return lex.alphabet }

// Word returns the word at the given index.
func (lex *Lexicon) Word(idx int) Word { return lex.words[idx] }

// HasLength reports whether any word of length L is indexed.
func (lex *Lexicon) HasLength(L int) bool {
	return len(lex.wordsByLen[L]) > 0
}

// Lengths returns the set of word lengths this lexicon indexes, sorted
// ascending -- used by CLI reporting to summarize coverage.
func (lex *Lexicon) Lengths() []int {
	lengths := maps.Keys(lex.wordsByLen)
	slices.Sort(lengths)
	return lengths
}

// Matching returns all word indices of length mask.Len() whose
// grapheme at each set position equals the corresponding letter in
// letters. Results are memoised by (mask, letters) in a bounded LRU.
func (lex *Lexicon) Matching(mask pattern.Mask, letters pattern.LetterTuple) ([]int, error) {
	L := mask.Len()
	if !lex.HasLength(L) {
		return nil, ErrNoLengthBucket
	}

	key := pattern.NewMatchKey(L, mask, letters)
	if cached, ok := lex.matchCache.Get(key); ok {
		return cached, nil
	}

	result := lex.matchingUncached(L, mask, letters)
	lex.matchCache.Put(key, result)
	return result, nil
}

func (lex *Lexicon) matchingUncached(L int, mask pattern.Mask, letters pattern.LetterTuple) []int {
	positions := mask.Positions()
	if len(positions) == 0 {
		base := lex.wordsByLen[L]
		out := make([]int, len(base))
		copy(out, base)
		return out
	}

	// Gather the posting list for each (position, letter) pair and
	// intersect smallest-first so we prune as early as possible.
	lists := make([][]int, len(positions))
	for i, p := range positions {
		letter := letters.At(i)
		lists[i] = lex.posting[postingKey{length: L, pos: p, letter: letter}]
	}
	slices.SortFunc(lists, func(a, b []int) int { return len(a) - len(b) })

	result := lists[0]
	for i := 1; i < len(lists) && len(result) > 0; i++ {
		result = intersectSorted(result, lists[i])
	}

	out := make([]int, len(result))
	copy(out, result)
	return out
}

// MatchingExcluding behaves like Matching but removes every index in
// excluded, returned in ascending word-index order.
func (lex *Lexicon) MatchingExcluding(mask pattern.Mask, letters pattern.LetterTuple, excluded map[int]struct{}) ([]int, error) {
	matches, err := lex.Matching(mask, letters)
	if err != nil {
		return nil, err
	}
	if len(excluded) == 0 {
		out := make([]int, len(matches))
		copy(out, matches)
		return out, nil
	}

	out := make([]int, 0, len(matches))
	for _, idx := range matches {
		if _, skip := excluded[idx]; !skip {
			out = append(out, idx)
		}
	}
	return out, nil
}

// LetterHistogram returns, for each grapheme in the alphabet, how many
// of candidateWords have it at position `position`. A single pass with
// a bincount over the pre-stored per-word grapheme sequence.
func (lex *Lexicon) LetterHistogram(candidateWords []int, position int) []uint32 {
	hist := make([]uint32, lex.alphabet.Size())
	for _, idx := range candidateWords {
		w := lex.words[idx]
		if position < len(w.Graphemes) {
			hist[w.Graphemes[position]]++
		}
	}
	return hist
}

// UseScoreVector replaces every word's score with the precomputed
// per-concept value a caller derived from its category weights, joined
// by ConceptID. It must be called between solves, never concurrently
// with one.
func (lex *Lexicon) UseScoreVector(scoreByConceptID map[int]float64) {
	for i := range lex.words {
		if s, ok := scoreByConceptID[lex.words[i].ConceptID]; ok {
			lex.words[i].Score = s
		}
	}
}

// WithScoreVector returns a lexicon sharing this one's posting lists
// and match cache but carrying its own score column, rebound from
// scoreByConceptID. Workers applying a per-request preference use it
// so a lexicon shared with concurrent solves is never mutated; the
// shared structures are score-independent.
func (lex *Lexicon) WithScoreVector(scoreByConceptID map[int]float64) *Lexicon {
	clone := *lex
	clone.words = append([]Word(nil), lex.words...)
	for i := range clone.words {
		if s, ok := scoreByConceptID[clone.words[i].ConceptID]; ok {
			clone.words[i].Score = s
		}
	}
	return &clone
}

// intersectSorted returns the sorted intersection of two sorted,
// duplicate-free int slices.
func intersectSorted(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Package alphabet provides locale-scoped grapheme ordering and splitting.
//
// A word in lesmotsdatche is a sequence of graphemes, not runes: some
// locales (Czech "ch", for instance) write a single letter with more
// than one codepoint. Splitting and indexing always goes through an
// Alphabet so the rest of the fill engine never has to special-case
// multi-codepoint letters.
package alphabet

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownLetter is returned by Split when a prefix of the input
// does not match any grapheme in the alphabet.
var ErrUnknownLetter = errors.New("alphabet: unknown letter")

// ErrUnknownLocale is returned when no alphabet is registered for a
// requested locale code.
var ErrUnknownLocale = errors.New("alphabet: unknown locale")

// Alphabet is the ordered set of graphemes for one locale.
//
// Graphemes are assigned a stable 0-based index in [0, Size()) in the
// order they were registered. All letter math elsewhere in the fill
// engine (masks, posting lists, possibility matrices) is expressed in
// terms of these indices.
type Alphabet struct {
	locale    string
	graphemes []string
	index     map[string]int
	maxLen    int // longest grapheme, in runes, for greedy matching
}

// New builds an Alphabet from an ordered, deduplicated list of
// graphemes. Graphemes are compared case-insensitively; callers
// should pass lowercase forms.
func New(locale string, graphemes []string) *Alphabet {
	a := &Alphabet{
		locale:    locale,
		graphemes: make([]string, 0, len(graphemes)),
		index:     make(map[string]int, len(graphemes)),
	}
	for _, g := range graphemes {
		if _, exists := a.index[g]; exists {
			continue
		}
		a.index[g] = len(a.graphemes)
		a.graphemes = append(a.graphemes, g)
		if n := len([]rune(g)); n > a.maxLen {
			a.maxLen = n
		}
	}
	return a
}

// Locale returns the locale code this alphabet was built for.
func (a *Alphabet) Locale() string { return a.locale }

// Size returns |Σ|, the number of graphemes in the alphabet.
func (a *Alphabet) Size() int { return len(a.graphemes) }

// Grapheme returns the grapheme at index i.
func (a *Alphabet) Grapheme(i int) string { return a.graphemes[i] }

// IndexOf returns the 0-based index of a grapheme, or -1 if absent.
func (a *Alphabet) IndexOf(g string) int {
	if i, ok := a.index[g]; ok {
		return i
	}
	return -1
}

// Split splits s into a sequence of grapheme indices by greedy
// longest-match against Σ, after lowercasing. It fails with
// ErrUnknownLetter if any remaining prefix does not match.
func (a *Alphabet) Split(s string) ([]int, error) {
	runes := []rune(strings.ToLower(s))
	out := make([]int, 0, len(runes))

	for pos := 0; pos < len(runes); {
		matched := false
		maxTry := a.maxLen
		if rem := len(runes) - pos; rem < maxTry {
			maxTry = rem
		}
		for n := maxTry; n >= 1; n-- {
			candidate := string(runes[pos : pos+n])
			if idx, ok := a.index[candidate]; ok {
				out = append(out, idx)
				pos += n
				matched = true
				break
			}
		}
		if !matched {
			return nil, ErrUnknownLetter
		}
	}
	return out, nil
}

// Join renders a sequence of grapheme indices back into a string.
func (a *Alphabet) Join(graphemes []int) string {
	var b strings.Builder
	for _, g := range graphemes {
		b.WriteString(a.graphemes[g])
	}
	return b.String()
}

// registry memoises Alphabet construction per locale.
type registry struct {
	mu    sync.RWMutex
	packs map[string]*Alphabet
}

var defaultRegistry = &registry{packs: make(map[string]*Alphabet)}

// Register installs an alphabet for a locale code, replacing any
// previous registration. Intended to be called once at startup.
func Register(a *Alphabet) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.packs[a.locale] = a
}

// For returns the registered alphabet for a locale, memoised.
func For(locale string) (*Alphabet, error) {
	defaultRegistry.mu.RLock()
	a, ok := defaultRegistry.packs[locale]
	defaultRegistry.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownLocale
	}
	return a, nil
}

// basicLatin returns "a".."z" as single-rune graphemes.
func basicLatin() []string {
	out := make([]string, 0, 26)
	for r := 'a'; r <= 'z'; r++ {
		out = append(out, string(r))
	}
	return out
}

// stripDiacritics performs NFD decomposition and drops combining
// marks, so accented source words land on the plain letters the grid
// actually stores.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func init() {
	// English: plain a-z. Split does not strip diacritics, so an
	// accented word fails with ErrUnknownLetter.
	Register(New("en", basicLatin()))

	// French: plain a-z; accented words fail to split, as for English.
	Register(New("fr", basicLatin()))

	// Czech: a-z plus the canonical multi-codepoint grapheme "ch",
	// which in Czech collation sorts as its own letter between h and i.
	cs := append(basicLatin(), "ch")
	Register(New("cs", cs))
}

// NormalizeForSplit strips diacritics and lowercases s, folding
// accented input onto the plain letters the registered alphabets hold.
// Split does not call it.
func NormalizeForSplit(s string) string {
	return strings.ToLower(stripDiacritics(s))
}

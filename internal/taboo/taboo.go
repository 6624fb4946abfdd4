// Package taboo provides locale-scoped taboo word lists for lexicon
// ingestion: a word set per locale, exposed as the filter
// lexsource.ReadCSV applies while ingesting a source.
package taboo

import "lesmotsdatche/internal/lexsource"

// ListFor returns the registered taboo word list for a locale, or nil
// if none is registered.
func ListFor(locale string) []string {
	return lists[locale]
}

// FilterFor builds a lexsource.WordSetFilter from the taboo list
// registered for locale. Returns nil if the locale has no list, so
// callers can append the result to a filter slice unconditionally
// only after a nil check.
func FilterFor(locale string) *lexsource.WordSetFilter {
	words := lists[locale]
	if len(words) == 0 {
		return nil
	}
	return lexsource.NewWordSetFilter(words)
}

var lists = map[string][]string{
	"fr": frenchTabooList,
	"en": englishTabooList,
}

// French taboo list (offensive/inappropriate words to avoid).
var frenchTabooList = []string{
	// Slurs and offensive terms
	"conasse", "connasse", "connard", "salope", "salaud",
	"putain", "pute", "merde", "enculer", "encule",
	"nique", "niquer", "baiser", "bite", "couille",
	"chier", "foutre", "bordel",
	// Discriminatory terms
	"negre", "bougnoule", "youpin", "rital", "boche",
	"bicot", "melon", "bamboula", "chinetoque",
	// Violence
	"nazi", "genocide", "viol", "violer",
}

// English taboo list (minimal stub).
var englishTabooList = []string{
	// Basic offensive terms
	"fuck", "shit", "cunt", "bitch", "asshole",
	"nigger", "faggot", "retard",
	// Violence
	"nazi", "genocide", "rape",
}

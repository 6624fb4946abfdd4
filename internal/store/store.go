// Package store persists lexicon sources and solved grids. It stays a
// thin JSON-blob layer over SQLite (or an in-memory map) rather than
// a full relational schema for the solver's own data model.
package store

import (
	"context"
	"time"
)

// LexiconFilter contains criteria for listing lexicon records.
type LexiconFilter struct {
	Locale string
	Limit  int
	Offset int
}

// LexiconSummary is the listing-friendly view of a stored lexicon.
type LexiconSummary struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

// LexiconRecord is a persisted lexicon source: the raw entries
// ingested from a tabular source, not the in-memory index built from
// them -- the index is rebuilt on load via fill.NewLexicon.
type LexiconRecord struct {
	ID        string         `json:"id"`
	Locale    string         `json:"locale"`
	Entries   []LexiconEntry `json:"entries"`
	CreatedAt time.Time      `json:"created_at"`
}

// LexiconEntry mirrors fill.Entry for JSON persistence, kept separate
// so store has no import-time dependency on the fill package's
// construction logic. Categories holds the word's fixed categorisation
// vector (tag -> value), joined with a solve request's category
// weights at solve time to rebind scores.
type LexiconEntry struct {
	Label       string             `json:"label"`
	Description string             `json:"description,omitempty"`
	ConceptID   int                `json:"concept_id"`
	Score       float64            `json:"score,omitempty"`
	Categories  map[string]float64 `json:"categories,omitempty"`
}

// SolveFilter contains criteria for listing solve records.
type SolveFilter struct {
	LexiconID string
	Solved    *bool
	Limit     int
	Offset    int
}

// SolveSummary is the listing-friendly view of a stored solve.
type SolveSummary struct {
	ID         string    `json:"id"`
	LexiconID  string    `json:"lexicon_id"`
	Solved     bool      `json:"solved"`
	Backtracks int       `json:"backtracks"`
	CreatedAt  time.Time `json:"created_at"`
}

// SolveRecord is a persisted solve attempt: the grid JSON result
// plus the run's provenance.
type SolveRecord struct {
	ID         string    `json:"id"`
	LexiconID  string    `json:"lexicon_id"`
	Seed       int64     `json:"seed"`
	Solved     bool      `json:"solved"`
	Backtracks int       `json:"backtracks"`
	ResultJSON []byte    `json:"result"` // grid.Result, pre-marshaled
	CreatedAt  time.Time `json:"created_at"`
}

// LexiconRepository persists lexicon sources.
type LexiconRepository interface {
	Store(ctx context.Context, r *LexiconRecord) error
	Get(ctx context.Context, id string) (*LexiconRecord, error)
	List(ctx context.Context, filter LexiconFilter) ([]*LexiconSummary, error)
	Delete(ctx context.Context, id string) error
}

// SolveRepository persists solve attempts.
type SolveRepository interface {
	Store(ctx context.Context, r *SolveRecord) error
	Get(ctx context.Context, id string) (*SolveRecord, error)
	List(ctx context.Context, filter SolveFilter) ([]*SolveSummary, error)
	Delete(ctx context.Context, id string) error
}

// Store combines both repositories.
type Store interface {
	Lexicons() LexiconRepository
	Solves() SolveRepository

	Migrate(ctx context.Context) error
	Close() error
}

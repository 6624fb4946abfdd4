package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation, used in tests and
// for ad hoc solves where SQLite persistence isn't needed. Records
// are cloned on read and write so callers never share memory with the
// store.
type MemoryStore struct {
	lexicons *MemoryLexiconRepository
	solves   *MemorySolveRepository
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lexicons: &MemoryLexiconRepository{lexicons: make(map[string]*LexiconRecord)},
		solves:   &MemorySolveRepository{solves: make(map[string]*SolveRecord)},
	}
}

func (s *MemoryStore) Lexicons() LexiconRepository { return s.lexicons }
func (s *MemoryStore) Solves() SolveRepository     { return s.solves }
func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }
func (s *MemoryStore) Close() error { return nil }

// MemoryLexiconRepository is an in-memory LexiconRepository.
type MemoryLexiconRepository struct {
	mu       sync.RWMutex
	lexicons map[string]*LexiconRecord
}

func (r *MemoryLexiconRepository) Store(ctx context.Context, rec *LexiconRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	clone := *rec
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	clone.Entries = append([]LexiconEntry(nil), rec.Entries...)
	r.lexicons[rec.ID] = &clone
	return nil
}

func (r *MemoryLexiconRepository) Get(ctx context.Context, id string) (*LexiconRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.lexicons[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	clone.Entries = append([]LexiconEntry(nil), rec.Entries...)
	return &clone, nil
}

func (r *MemoryLexiconRepository) List(ctx context.Context, filter LexiconFilter) ([]*LexiconSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*LexiconSummary
	for _, rec := range r.lexicons {
		if filter.Locale != "" && rec.Locale != filter.Locale {
			continue
		}
		out = append(out, &LexiconSummary{
			ID: rec.ID, Locale: rec.Locale, WordCount: len(rec.Entries), CreatedAt: rec.CreatedAt,
		})
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryLexiconRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lexicons[id]; !ok {
		return ErrNotFound
	}
	delete(r.lexicons, id)
	return nil
}

// MemorySolveRepository is an in-memory SolveRepository.
type MemorySolveRepository struct {
	mu     sync.RWMutex
	solves map[string]*SolveRecord
}

func (r *MemorySolveRepository) Store(ctx context.Context, rec *SolveRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	clone := *rec
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	clone.ResultJSON = append([]byte(nil), rec.ResultJSON...)
	r.solves[rec.ID] = &clone
	return nil
}

func (r *MemorySolveRepository) Get(ctx context.Context, id string) (*SolveRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.solves[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	clone.ResultJSON = append([]byte(nil), rec.ResultJSON...)
	return &clone, nil
}

func (r *MemorySolveRepository) List(ctx context.Context, filter SolveFilter) ([]*SolveSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*SolveSummary
	for _, rec := range r.solves {
		if filter.LexiconID != "" && rec.LexiconID != filter.LexiconID {
			continue
		}
		if filter.Solved != nil && rec.Solved != *filter.Solved {
			continue
		}
		out = append(out, &SolveSummary{
			ID: rec.ID, LexiconID: rec.LexiconID, Solved: rec.Solved,
			Backtracks: rec.Backtracks, CreatedAt: rec.CreatedAt,
		})
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemorySolveRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.solves[id]; !ok {
		return ErrNotFound
	}
	delete(r.solves, id)
	return nil
}

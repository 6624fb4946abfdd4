package store

import (
	"context"
	"testing"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() { store.Close() })

	return store
}

func testLexiconRecord() *LexiconRecord {
	return &LexiconRecord{
		Locale: "fr",
		Entries: []LexiconEntry{
			{Label: "chat", ConceptID: 1, Score: 0.9},
			{Label: "chien", ConceptID: 2, Score: 0.8},
		},
	}
}

func TestSQLiteLexiconStoreAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := testLexiconRecord()
	if err := store.Lexicons().Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected Store to assign an ID")
	}

	got, err := store.Lexicons().Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Locale != "fr" || len(got.Entries) != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestSQLiteLexiconGetNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Lexicons().Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteLexiconList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fr := testLexiconRecord()
	en := &LexiconRecord{Locale: "en", Entries: []LexiconEntry{{Label: "cat", ConceptID: 3}}}
	store.Lexicons().Store(ctx, fr)
	store.Lexicons().Store(ctx, en)

	results, err := store.Lexicons().List(ctx, LexiconFilter{Locale: "en"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 || results[0].Locale != "en" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestSQLiteLexiconDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := testLexiconRecord()
	store.Lexicons().Store(ctx, rec)

	if err := store.Lexicons().Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Lexicons().Get(ctx, rec.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Lexicons().Delete(ctx, rec.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestSQLiteSolveStoreAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	lex := testLexiconRecord()
	store.Lexicons().Store(ctx, lex)

	rec := &SolveRecord{
		LexiconID:  lex.ID,
		Seed:       42,
		Solved:     true,
		Backtracks: 7,
		ResultJSON: []byte(`{"rows":2,"cols":2}`),
	}
	if err := store.Solves().Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := store.Solves().Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Solved || got.Backtracks != 7 || got.Seed != 42 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestSQLiteSolveListByLexicon(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	lex := testLexiconRecord()
	store.Lexicons().Store(ctx, lex)

	solved := true
	for i := 0; i < 3; i++ {
		store.Solves().Store(ctx, &SolveRecord{
			LexiconID: lex.ID, Seed: int64(i), Solved: true, ResultJSON: []byte("{}"),
		})
	}

	results, err := store.Solves().List(ctx, SolveFilter{LexiconID: lex.ID, Solved: &solved})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 solves, got %d", len(results))
	}
}

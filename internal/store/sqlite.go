package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// SQLiteStore implements Store using SQLite, with record bodies kept
// in a JSON payload column.
type SQLiteStore struct {
	db       *sql.DB
	lexicons *sqliteLexiconRepo
	solves   *sqliteSolveRepo
}

// NewSQLiteStore opens a SQLite store. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if !strings.Contains(dsn, ":memory:") {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	store := &SQLiteStore{db: db}
	store.lexicons = &sqliteLexiconRepo{db: db}
	store.solves = &sqliteSolveRepo{db: db}
	return store, nil
}

// Lexicons returns the lexicon repository.
func (s *SQLiteStore) Lexicons() LexiconRepository { return s.lexicons }

// Solves returns the solve repository.
func (s *SQLiteStore) Solves() SolveRepository { return s.solves }

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	upSQL, err := migrationsFS.ReadFile("migrations/001_initial.up.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("failed to run migration: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type sqliteLexiconRepo struct {
	db *sql.DB
}

func (r *sqliteLexiconRepo) Store(ctx context.Context, rec *LexiconRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal lexicon entries: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lexicons (id, locale, word_count, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			locale = excluded.locale,
			word_count = excluded.word_count,
			payload = excluded.payload
	`, rec.ID, rec.Locale, len(rec.Entries), payload, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store lexicon: %w", err)
	}
	return nil
}

func (r *sqliteLexiconRepo) Get(ctx context.Context, id string) (*LexiconRecord, error) {
	var rec LexiconRecord
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, locale, payload, created_at FROM lexicons WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Locale, &payload, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lexicon: %w", err)
	}
	if err := json.Unmarshal(payload, &rec.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lexicon entries: %w", err)
	}
	return &rec, nil
}

func (r *sqliteLexiconRepo) List(ctx context.Context, filter LexiconFilter) ([]*LexiconSummary, error) {
	query := `SELECT id, locale, word_count, created_at FROM lexicons WHERE 1=1`
	var args []interface{}

	if filter.Locale != "" {
		query += " AND locale = ?"
		args = append(args, filter.Locale)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lexicons: %w", err)
	}
	defer rows.Close()

	var out []*LexiconSummary
	for rows.Next() {
		var s LexiconSummary
		if err := rows.Scan(&s.ID, &s.Locale, &s.WordCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lexicon: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *sqliteLexiconRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lexicons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lexicon: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type sqliteSolveRepo struct {
	db *sql.DB
}

func (r *sqliteSolveRepo) Store(ctx context.Context, rec *SolveRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO solves (id, lexicon_id, seed, solved, backtracks, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			solved = excluded.solved,
			backtracks = excluded.backtracks,
			result = excluded.result
	`, rec.ID, rec.LexiconID, rec.Seed, rec.Solved, rec.Backtracks, rec.ResultJSON, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store solve: %w", err)
	}
	return nil
}

func (r *sqliteSolveRepo) Get(ctx context.Context, id string) (*SolveRecord, error) {
	var rec SolveRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, lexicon_id, seed, solved, backtracks, result, created_at
		FROM solves WHERE id = ?
	`, id).Scan(&rec.ID, &rec.LexiconID, &rec.Seed, &rec.Solved, &rec.Backtracks, &rec.ResultJSON, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solve: %w", err)
	}
	return &rec, nil
}

func (r *sqliteSolveRepo) List(ctx context.Context, filter SolveFilter) ([]*SolveSummary, error) {
	query := `SELECT id, lexicon_id, solved, backtracks, created_at FROM solves WHERE 1=1`
	var args []interface{}

	if filter.LexiconID != "" {
		query += " AND lexicon_id = ?"
		args = append(args, filter.LexiconID)
	}
	if filter.Solved != nil {
		query += " AND solved = ?"
		args = append(args, *filter.Solved)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list solves: %w", err)
	}
	defer rows.Close()

	var out []*SolveSummary
	for rows.Next() {
		var s SolveSummary
		if err := rows.Scan(&s.ID, &s.LexiconID, &s.Solved, &s.Backtracks, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan solve: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *sqliteSolveRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM solves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete solve: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

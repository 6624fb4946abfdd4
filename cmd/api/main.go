// Command api runs the crossword-solving HTTP service: it accepts
// solve requests over HTTP, queues them, and runs a worker pool
// against persisted lexicons.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lesmotsdatche/internal/alphabet"
	"lesmotsdatche/internal/api"
	"lesmotsdatche/internal/fill"
	"lesmotsdatche/internal/lexsource"
	"lesmotsdatche/internal/queue"
	"lesmotsdatche/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		addr        = flag.String("addr", envOr("PORT", ":8080"), "HTTP server address")
		dbPath      = flag.String("db", envOr("DATABASE_PATH", "lesmotsdatche.db"), "SQLite database path")
		workers     = flag.Int("workers", 4, "number of solve workers")
		seedsPerJob = flag.Int("seeds", 3, "solve attempts per job, best kept")
		maxBack     = flag.Int("max-backtracks", 200000, "backtrack budget per solve attempt")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	jobs := queue.NewMemoryQueue(256)
	notifier := queue.NewJobNotifier(queue.NewWebhookNotifier(10 * time.Second))

	lexicons := newLexiconCache(db)
	pool := queue.NewWorkerPool(queue.WorkerPoolConfig{
		Queue:                   jobs,
		Lexicons:                lexicons.lookup,
		Categories:              lexicons.categories,
		Notifier:                notifier,
		Logger:                  logger,
		Workers:                 *workers,
		SeedsPerJob:             *seedsPerJob,
		MaxBacktracksPerAttempt: *maxBack,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go pool.Run(ctx)

	router := api.NewRouter(api.Config{
		Store:    db,
		Jobs:     jobs,
		Notifier: notifier,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	jobs.Close()
	cancel()

	logger.Info("server stopped")
}

// lexiconCache resolves a locale to the most recently stored lexicon
// for it, building and memoizing the fill.Lexicon index on first use.
// A worker pool calls this once per job, so repeated lookups for a hot
// locale must not rebuild the index every time.
type lexiconCache struct {
	store store.Store

	mu    sync.Mutex
	built map[string]*builtLexicon
}

type builtLexicon struct {
	lexicon *fill.Lexicon
	alpha   *alphabet.Alphabet
	vectors lexsource.CategoryVectors
}

func newLexiconCache(s store.Store) *lexiconCache {
	return &lexiconCache{store: s, built: make(map[string]*builtLexicon)}
}

func (c *lexiconCache) lookup(locale string) (*fill.Lexicon, *alphabet.Alphabet, error) {
	b, err := c.build(locale)
	if err != nil {
		return nil, nil, err
	}
	return b.lexicon, b.alpha, nil
}

// categories satisfies queue.CategoryLookup from the same cached
// record the lexicon itself was built from.
func (c *lexiconCache) categories(locale string) (lexsource.CategoryVectors, error) {
	b, err := c.build(locale)
	if err != nil {
		return nil, err
	}
	return b.vectors, nil
}

func (c *lexiconCache) build(locale string) (*builtLexicon, error) {
	c.mu.Lock()
	if b, ok := c.built[locale]; ok {
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	alpha, err := alphabet.For(locale)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	summaries, err := c.store.Lexicons().List(ctx, store.LexiconFilter{Locale: locale, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, store.ErrNotFound
	}

	rec, err := c.store.Lexicons().Get(ctx, summaries[0].ID)
	if err != nil {
		return nil, err
	}

	entries := make([]fill.Entry, len(rec.Entries))
	vectors := make(lexsource.CategoryVectors)
	for i, e := range rec.Entries {
		entries[i] = fill.Entry{Label: e.Label, Description: e.Description, ConceptID: e.ConceptID, Score: e.Score}
		if len(e.Categories) > 0 {
			vectors[e.ConceptID] = e.Categories
		}
	}

	lex, _, err := fill.NewLexicon(alpha, entries)
	if err != nil {
		return nil, err
	}

	b := &builtLexicon{lexicon: lex, alpha: alpha, vectors: vectors}
	c.mu.Lock()
	c.built[locale] = b
	c.mu.Unlock()

	return b, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

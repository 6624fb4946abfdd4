package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"lesmotsdatche/internal/alphabet"
	"lesmotsdatche/internal/fill"
	"lesmotsdatche/internal/grid"
	"lesmotsdatche/internal/lexsource"
	"lesmotsdatche/internal/solver"
)

// LexiconLookup resolves a locale to the lexicon a worker should
// solve against. Kept as an interface so a worker pool doesn't need
// to know whether lexicons come from store.Store, a static map, or
// something else.
type LexiconLookup func(locale string) (*fill.Lexicon, *alphabet.Alphabet, error)

// CategoryLookup resolves a locale to the per-word categorisation
// vectors a job's preference is dotted with. Optional: pools without
// one ignore job preferences.
type CategoryLookup func(locale string) (lexsource.CategoryVectors, error)

// Notifier delivers a completed job's outcome, e.g. as a webhook
// POST.
type Notifier interface {
	Notify(ctx context.Context, outcome Outcome) error
}

// Outcome is what a worker reports back for a finished job.
type Outcome struct {
	JobID      string          `json:"job_id"`
	Solved     bool            `json:"solved"`
	Backtracks int             `json:"backtracks"`
	Result     json.RawMessage `json:"result,omitempty"`
	Err        string          `json:"error,omitempty"`
}

// WorkerPool runs a fixed number of goroutines pulling Jobs off a
// Queue, solving them, and notifying a Notifier. Cancellation is
// context-driven: workers drain in-flight jobs and stop.
type WorkerPool struct {
	queue      Queue
	lexicons   LexiconLookup
	categories CategoryLookup
	notifier   Notifier
	logger     *slog.Logger
	workers    int

	maxBacktracksPerAttempt int
	seedsPerJob             int
}

// WorkerPoolConfig configures a WorkerPool.
type WorkerPoolConfig struct {
	Queue                   Queue
	Lexicons                LexiconLookup
	Categories              CategoryLookup // may be nil: job preferences are ignored
	Notifier                Notifier       // may be nil: outcomes are only logged
	Logger                  *slog.Logger
	Workers                 int
	MaxBacktracksPerAttempt int
	SeedsPerJob             int            // number of solve attempts per job, best kept
}

// NewWorkerPool builds a WorkerPool from cfg.
func NewWorkerPool(cfg WorkerPoolConfig) *WorkerPool {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	seeds := cfg.SeedsPerJob
	if seeds < 1 {
		seeds = 1
	}

	return &WorkerPool{
		queue:                   cfg.Queue,
		lexicons:                cfg.Lexicons,
		categories:              cfg.Categories,
		notifier:                cfg.Notifier,
		logger:                  logOrDiscard(cfg.Logger),
		workers:                 workers,
		maxBacktracksPerAttempt: cfg.MaxBacktracksPerAttempt,
		seedsPerJob:             seeds,
	}
}

// Run starts the worker goroutines and blocks until ctx is cancelled
// and all in-flight jobs finish.
func (p *WorkerPool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *WorkerPool) loop(ctx context.Context, workerID int) {
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		p.process(ctx, workerID, job)
	}
}

func (p *WorkerPool) process(ctx context.Context, workerID int, job Job) {
	start := time.Now()
	outcome := p.solve(job)

	p.logger.Info("job processed",
		"worker", workerID, "job_id", job.ID, "solved", outcome.Solved,
		"backtracks", outcome.Backtracks, "duration", time.Since(start).String())

	if job.Webhook != "" && p.notifier != nil {
		if err := p.notifier.Notify(ctx, outcome); err != nil {
			p.logger.Error("webhook notify failed", "job_id", job.ID, "error", err)
		}
	}
}

func (p *WorkerPool) solve(job Job) Outcome {
	lex, alpha, err := p.lexicons(job.Locale)
	if err != nil {
		return Outcome{JobID: job.ID, Err: err.Error()}
	}

	// A job preference rebinds scores on a private copy: the looked-up
	// lexicon may be shared with other workers mid-solve.
	if len(job.Preference) > 0 && p.categories != nil {
		vectors, err := p.categories(job.Locale)
		if err != nil {
			return Outcome{JobID: job.ID, Err: err.Error()}
		}
		lex = lex.WithScoreVector(job.Preference.ScoreVector(vectors))
	}

	template, err := grid.Parse(job.Template)
	if err != nil {
		return Outcome{JobID: job.ID, Err: err.Error()}
	}

	seeds := make([]int64, p.seedsPerJob)
	for i := range seeds {
		seeds[i] = job.Seed + int64(i)
		if job.Seed == 0 {
			seeds[i] = int64(i + 1)
		}
	}

	best, _ := solver.SolveBest(template, solver.AttemptConfig{
		Lexicon:                 lex,
		Seeds:                   seeds,
		MaxBacktracksPerAttempt: p.maxBacktracksPerAttempt,
	})

	if best == nil {
		return Outcome{JobID: job.ID, Err: "no attempts ran"}
	}

	outcome := Outcome{
		JobID:      job.ID,
		Solved:     best.Err == nil,
		Backtracks: backtracksOf(best.Result),
	}

	resultJSON, err := best.Grid.MarshalResult(alpha, nil)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	outcome.Result = resultJSON
	return outcome
}

func backtracksOf(r *solver.Result) int {
	if r == nil {
		return 0
	}
	return r.Backtracks
}

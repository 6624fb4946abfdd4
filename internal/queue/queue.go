// Package queue provides the job-dispatch layer a solver-hosting
// service needs: enqueue a solve request, have a worker pool run it,
// and notify a webhook URL when it finishes.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lesmotsdatche/internal/lexsource"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("queue: closed")

// Job is one solve request awaiting a worker.
type Job struct {
	ID         string
	Locale     string
	Template   []string
	Seed       int64
	Preference lexsource.CategoryWeights // optional per-request score reweighting
	Webhook    string                    // URL to notify on completion, empty to skip
	Submitted  time.Time
}

// Queue is the minimal job-queue interface a dispatcher needs; it
// does not assume any particular backing transport (channel, SQS,
// Redis list, ...).
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context) (Job, error)
	Close() error
}

// MemoryQueue is a process-local Queue backed by a buffered channel,
// the simplest backend that satisfies the interface -- a real
// deployment would swap this for a durable broker without touching
// caller code.
type MemoryQueue struct {
	jobs   chan Job
	closed chan struct{}
}

// NewMemoryQueue builds a MemoryQueue with the given buffer size.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryQueue{
		jobs:   make(chan Job, capacity),
		closed: make(chan struct{}),
	}
}

// Enqueue submits a job, blocking until there is room, ctx is
// cancelled, or the queue is closed.
func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closed:
		return ErrQueueClosed
	}
}

// Dequeue blocks until a job is available, ctx is cancelled, or the
// queue is closed and drained.
func (q *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return Job{}, ErrQueueClosed
		}
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Close stops accepting new jobs; workers drain what remains.
func (q *MemoryQueue) Close() error {
	select {
	case <-q.closed:
		return nil
	default:
		close(q.closed)
		close(q.jobs)
	}
	return nil
}

// logOrDiscard is a tiny seam so Worker can log without requiring callers to
// always pass a *slog.Logger.
func logOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return logger
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

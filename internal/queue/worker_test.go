package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lesmotsdatche/internal/alphabet"
	"lesmotsdatche/internal/fill"
	"lesmotsdatche/internal/lexsource"
)

func stubLexiconLookup(t *testing.T) LexiconLookup {
	t.Helper()
	alpha, err := alphabet.For("en")
	if err != nil {
		t.Fatalf("alphabet.For(en): %v", err)
	}
	entries := []fill.Entry{
		{Label: "to", ConceptID: 1, Score: 1.0},
		{Label: "an", ConceptID: 2, Score: 1.0},
		{Label: "ta", ConceptID: 3, Score: 1.0},
		{Label: "on", ConceptID: 4, Score: 1.0},
	}
	lex, _, err := fill.NewLexicon(alpha, entries)
	if err != nil {
		t.Fatalf("NewLexicon: %v", err)
	}
	return func(locale string) (*fill.Lexicon, *alphabet.Alphabet, error) {
		return lex, alpha, nil
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (n *recordingNotifier) Notify(_ context.Context, outcome Outcome) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, outcome)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.outcomes)
}

func TestWorkerPoolSolvesAndNotifies(t *testing.T) {
	q := NewMemoryQueue(4)
	notifier := &recordingNotifier{}
	pool := NewWorkerPool(WorkerPoolConfig{
		Queue:                   q,
		Lexicons:                stubLexiconLookup(t),
		Notifier:                notifier,
		Workers:                 2,
		SeedsPerJob:             2,
		MaxBacktracksPerAttempt: 500,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pool.Run(ctx)
	}()

	job := Job{ID: "job-1", Locale: "en", Template: []string{"__", "__"}, Seed: 1, Webhook: "http://example.invalid/hook"}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for notifier.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	q.Close()
	wg.Wait()

	if notifier.count() != 1 {
		t.Fatalf("expected exactly 1 notified outcome, got %d", notifier.count())
	}
	outcome := notifier.outcomes[0]
	if outcome.JobID != "job-1" {
		t.Errorf("outcome.JobID = %q, want job-1", outcome.JobID)
	}
	if !outcome.Solved {
		t.Errorf("expected the 2x2 grid to be solvable with the stub lexicon, got Err = %q", outcome.Err)
	}
}

func TestWorkerPoolAppliesJobPreference(t *testing.T) {
	q := NewMemoryQueue(4)
	notifier := &recordingNotifier{}
	var lookups int32
	pool := NewWorkerPool(WorkerPoolConfig{
		Queue:    q,
		Lexicons: stubLexiconLookup(t),
		Categories: func(locale string) (lexsource.CategoryVectors, error) {
			atomic.AddInt32(&lookups, 1)
			return lexsource.CategoryVectors{1: {"animals": 1.0}}, nil
		},
		Notifier:                notifier,
		Workers:                 1,
		SeedsPerJob:             1,
		MaxBacktracksPerAttempt: 500,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pool.Run(ctx)
	}()

	job := Job{
		ID:         "job-pref",
		Locale:     "en",
		Template:   []string{"__", "__"},
		Seed:       1,
		Preference: lexsource.CategoryWeights{"animals": 2.0},
		Webhook:    "http://example.invalid/hook",
	}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for notifier.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	q.Close()
	wg.Wait()

	if notifier.count() != 1 {
		t.Fatalf("expected 1 notified outcome, got %d", notifier.count())
	}
	if atomic.LoadInt32(&lookups) != 1 {
		t.Fatalf("expected the category vectors to be looked up once, got %d", lookups)
	}
	if !notifier.outcomes[0].Solved {
		t.Errorf("expected the reweighted solve to still succeed, got Err = %q", notifier.outcomes[0].Err)
	}
}

func TestWorkerPoolSkipsNotifyWithoutWebhook(t *testing.T) {
	q := NewMemoryQueue(4)
	notifier := &recordingNotifier{}
	pool := NewWorkerPool(WorkerPoolConfig{
		Queue:                   q,
		Lexicons:                stubLexiconLookup(t),
		Notifier:                notifier,
		Workers:                 1,
		SeedsPerJob:             1,
		MaxBacktracksPerAttempt: 500,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pool.Run(ctx)
	}()

	job := Job{ID: "job-no-hook", Locale: "en", Template: []string{"__", "__"}, Seed: 1}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	cancel()
	q.Close()
	wg.Wait()

	if notifier.count() != 0 {
		t.Fatalf("expected no notification without a webhook URL, got %d", notifier.count())
	}
}

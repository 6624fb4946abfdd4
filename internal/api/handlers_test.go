package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"lesmotsdatche/internal/queue"
	"lesmotsdatche/internal/store"
)

func setupTestServer(t *testing.T) (*httptest.Server, store.Store, *queue.MemoryQueue) {
	t.Helper()

	db := store.NewMemoryStore()
	jobs := queue.NewMemoryQueue(16)
	notifier := queue.NewJobNotifier(queue.NewWebhookNotifier(0))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	router := NewRouter(Config{Store: db, Jobs: jobs, Notifier: notifier, Logger: logger})
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		jobs.Close()
		db.Close()
	})

	return server, db, jobs
}

func TestHealthCheck(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("failed to get health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	var result map[string]string
	json.NewDecoder(resp.Body).Decode(&result)

	if result["status"] != "ok" {
		t.Errorf("expected status ok, got %s", result["status"])
	}
}

func TestSubmitSolve(t *testing.T) {
	server, _, jobs := setupTestServer(t)

	body, _ := json.Marshal(map[string]interface{}{
		"locale":   "fr",
		"template": []string{"__X", "___"},
	})

	resp, err := http.Post(server.URL+"/v1/solves", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to submit solve: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", resp.StatusCode)
	}

	var result map[string]string
	json.NewDecoder(resp.Body).Decode(&result)
	if result["job_id"] == "" {
		t.Error("expected a job_id in response")
	}

	job, err := jobs.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("expected job to be enqueued: %v", err)
	}
	if job.Locale != "fr" {
		t.Errorf("expected locale fr, got %q", job.Locale)
	}
}

func TestSubmitSolve_InvalidRequest(t *testing.T) {
	server, _, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]interface{}{"template": []string{"___"}})

	resp, err := http.Post(server.URL+"/v1/solves", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to submit solve: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400 for missing locale, got %d", resp.StatusCode)
	}
}

func TestGetSolve(t *testing.T) {
	server, db, _ := setupTestServer(t)
	ctx := context.Background()

	rec := &store.SolveRecord{ID: "solve-1", LexiconID: "lex-1", Solved: true, ResultJSON: []byte(`{}`)}
	if err := db.Solves().Store(ctx, rec); err != nil {
		t.Fatalf("failed to seed solve: %v", err)
	}

	resp, err := http.Get(server.URL + "/v1/solves/solve-1")
	if err != nil {
		t.Fatalf("failed to get solve: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("expected ETag header")
	}
}

func TestGetSolve_NotFound(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/v1/solves/nonexistent")
	if err != nil {
		t.Fatalf("failed to get solve: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestListSolves(t *testing.T) {
	server, db, _ := setupTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		db.Solves().Store(ctx, &store.SolveRecord{ID: id, LexiconID: "lex-1", ResultJSON: []byte(`{}`)})
	}

	resp, err := http.Get(server.URL + "/v1/solves?lexicon_id=lex-1")
	if err != nil {
		t.Fatalf("failed to list solves: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	var result struct {
		Solves []store.SolveSummary `json:"solves"`
		Count  int                  `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	if result.Count != 3 {
		t.Errorf("expected 3 solves, got %d", result.Count)
	}
}

func TestCORSHeaders(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("failed to get health: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestCORSSkipsAdminRoutes(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/admin/v1/lexicons")
	if err != nil {
		t.Fatalf("failed to list lexicons: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS headers on admin routes")
	}
}

func TestGzipCompression(t *testing.T) {
	server, db, _ := setupTestServer(t)
	ctx := context.Background()

	db.Solves().Store(ctx, &store.SolveRecord{ID: "gzip-test", LexiconID: "lex-1", ResultJSON: []byte(`{}`)})

	req, _ := http.NewRequest("GET", server.URL+"/v1/solves/gzip-test", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to get solve: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Error("expected gzip content encoding")
	}
}

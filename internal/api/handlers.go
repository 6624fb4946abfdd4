// Package api provides HTTP handlers for submitting solve requests
// and inspecting stored lexicons/solves.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"lesmotsdatche/internal/queue"
	"lesmotsdatche/internal/store"
	"lesmotsdatche/internal/validate"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store    store.Store
	jobs     queue.Queue
	notifier *queue.JobNotifier
}

// NewHandler creates a new Handler.
func NewHandler(s store.Store, jobs queue.Queue, notifier *queue.JobNotifier) *Handler {
	return &Handler{store: s, jobs: jobs, notifier: notifier}
}

// SubmitSolve enqueues a solve request.
// POST /v1/solves
func (h *Handler) SubmitSolve(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		return
	}

	if errs := validate.ValidateSolveRequestJSON(body); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, errs.Error())
		return
	}

	var req validate.SolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid solve request")
		return
	}

	webhook := r.URL.Query().Get("webhook")
	jobID := newJobID()
	job := queue.Job{
		ID:         jobID,
		Locale:     req.Locale,
		Template:   req.Template,
		Seed:       req.Seed,
		Preference: req.CategorizationPreference,
		Webhook:    webhook,
		Submitted:  time.Now().UTC(),
	}

	if webhook != "" && h.notifier != nil {
		h.notifier.Register(jobID, webhook)
	}

	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to enqueue solve request")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID, "status": "queued"})
}

// GetSolve returns a persisted solve result by ID.
// GET /v1/solves/{id}
func (h *Handler) GetSolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing solve id")
		return
	}

	rec, err := h.store.Solves().Get(r.Context(), id)
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, "solve not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch solve")
		return
	}

	writeJSONWithETag(w, rec)
}

// ListSolves lists stored solves for a lexicon.
// GET /v1/solves?lexicon_id=...
func (h *Handler) ListSolves(w http.ResponseWriter, r *http.Request) {
	filter := store.SolveFilter{
		LexiconID: r.URL.Query().Get("lexicon_id"),
		Limit:     50,
	}

	solves, err := h.store.Solves().List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list solves")
		return
	}
	if solves == nil {
		solves = []*store.SolveSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"solves": solves, "count": len(solves)})
}

// HealthCheck returns server health status.
// GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

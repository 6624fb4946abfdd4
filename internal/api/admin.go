package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lesmotsdatche/internal/store"
)

// AdminHandler holds dependencies for lexicon-management HTTP handlers.
type AdminHandler struct {
	store store.Store
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(s store.Store) *AdminHandler {
	return &AdminHandler{store: s}
}

// StoreLexicon stores a lexicon source (create or update).
// POST /admin/v1/lexicons
func (h *AdminHandler) StoreLexicon(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		return
	}

	var rec store.LexiconRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid lexicon JSON")
		return
	}

	if rec.Locale == "" {
		writeError(w, http.StatusBadRequest, "locale is required")
		return
	}
	if len(rec.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "entries must not be empty")
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := h.store.Lexicons().Store(r.Context(), &rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": rec.ID, "status": "stored"})
}

// GetLexicon returns a lexicon source by ID.
// GET /admin/v1/lexicons/{id}
func (h *AdminHandler) GetLexicon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing lexicon id")
		return
	}

	rec, err := h.store.Lexicons().Get(r.Context(), id)
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, "lexicon not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch lexicon")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ListLexicons lists stored lexicon sources with optional filtering.
// GET /admin/v1/lexicons
func (h *AdminHandler) ListLexicons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.LexiconFilter{
		Locale: q.Get("locale"),
		Limit:  100,
	}

	lexicons, err := h.store.Lexicons().List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list lexicons")
		return
	}
	if lexicons == nil {
		lexicons = []*store.LexiconSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lexicons": lexicons,
		"count":    len(lexicons),
	})
}

// DeleteLexicon deletes a lexicon source by ID.
// DELETE /admin/v1/lexicons/{id}
func (h *AdminHandler) DeleteLexicon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing lexicon id")
		return
	}

	if err := h.store.Lexicons().Delete(r.Context(), id); err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "lexicon not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// DeleteSolve deletes a persisted solve record by ID.
// DELETE /admin/v1/solves/{id}
func (h *AdminHandler) DeleteSolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing solve id")
		return
	}

	if err := h.store.Solves().Delete(r.Context(), id); err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "solve not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

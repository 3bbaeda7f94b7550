package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sush8471/ScamDEX-AI/internal/domain"
	"github.com/sush8471/ScamDEX-AI/internal/identity"
	"github.com/sush8471/ScamDEX-AI/internal/session"
)

// maxBodySize bounds submitted message bodies (1MB).
const maxBodySize = 1 << 20

// Engine is the investigation engine as seen by the HTTP layer.
type Engine interface {
	Start(ctx context.Context) session.View
	Get(ctx context.Context, sessionID string) (session.View, error)
	Submit(ctx context.Context, sessionID, text string) (session.Outcome, error)
	Reset(ctx context.Context, sessionID string) error
	Export(ctx context.Context, sessionID string) (domain.Transcript, error)
}

// SessionHandler exposes engine commands over HTTP.
type SessionHandler struct {
	engine Engine
	limit  func(http.Handler) http.Handler
}

// NewSessionHandler creates a handler. limit, if non-nil, wraps the
// message submission route.
func NewSessionHandler(engine Engine, limit func(http.Handler) http.Handler) *SessionHandler {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &SessionHandler{engine: engine, limit: limit}
}

// RegisterRoutes registers the session routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Reset)
			r.Get("/export", h.Export)
			r.With(h.limit).Post("/messages", h.Submit)
		})
	})
}

// SubmitRequest is the body of POST /api/sessions/{id}/messages.
type SubmitRequest struct {
	Text string `json:"text"`
}

// Start opens a new investigation.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusCreated, h.engine.Start(r.Context()))
}

// Get returns the current session view.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, id, err)
		return
	}
	JSON(w, http.StatusOK, view)
}

// Submit runs one counterparty turn. Ignored submissions still return 200
// with accepted=false.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.engine.Submit(r.Context(), id, req.Text)
	if err != nil {
		writeEngineError(w, id, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// Reset discards the session and its persisted slot.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.engine.Reset(r.Context(), id); err != nil {
		writeEngineError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export downloads the transcript artifact.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	tr, err := h.engine.Export(r.Context(), id)
	if err != nil {
		writeEngineError(w, id, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="scam-investigation-%s.json"`, id))
	JSON(w, http.StatusOK, tr)
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !identity.ValidSessionID(id) {
		Error(w, http.StatusBadRequest, "invalid session id")
		return "", false
	}
	return id, true
}

func writeEngineError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidID):
		Error(w, http.StatusBadRequest, "invalid session id")
	case errors.Is(err, session.ErrBusy):
		Error(w, http.StatusConflict, "a reply is still being generated")
	case errors.Is(err, session.ErrReset):
		Error(w, http.StatusConflict, "session was reset")
	case errors.Is(err, session.ErrEmptyTranscript):
		Error(w, http.StatusConflict, "nothing to export yet")
	default:
		slog.Error("session request failed", "session_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

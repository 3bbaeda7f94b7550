package feed

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/sush8471/ScamDEX-AI/internal/identity"
	"github.com/sush8471/ScamDEX-AI/internal/session"
)

const writeTimeout = 5 * time.Second

// Viewer reads the current view of a session.
type Viewer interface {
	Get(ctx context.Context, sessionID string) (session.View, error)
}

// Handler upgrades GET /ws/sessions/{id} and streams session events.
type Handler struct {
	hub            *Hub
	viewer         Viewer
	originPatterns []string
}

// NewHandler creates a feed handler. originPatterns follow
// websocket.AcceptOptions; empty allows same-origin only.
func NewHandler(hub *Hub, viewer Viewer, originPatterns []string) *Handler {
	return &Handler{hub: hub, viewer: viewer, originPatterns: originPatterns}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if !identity.ValidSessionID(sessionID) {
		http.Error(w, `{"error":"invalid session id"}`, http.StatusBadRequest)
		return
	}

	view, err := h.viewer.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, `{"error":"session unavailable"}`, http.StatusInternalServerError)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		slog.Error("failed to accept feed websocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed closed"); closeErr != nil {
			slog.Debug("failed to close feed websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	events, unsubscribe := h.hub.Subscribe(sessionID)
	defer unsubscribe()
	slog.Info("feed subscriber connected", "session_id", sessionID, "ip", identity.IPFromRequest(r))

	// The feed is one-way; CloseRead discards client frames and cancels ctx
	// when the peer goes away.
	ctx := ws.CloseRead(r.Context())

	if err := h.write(ctx, ws, session.Event{Type: session.EventState, SessionID: sessionID, View: &view}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("feed subscriber disconnected", "session_id", sessionID)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(ctx, ws, ev); err != nil {
				slog.Debug("feed write failed", "error", err, "session_id", sessionID)
				return
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, ws *websocket.Conn, ev session.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, ev)
}

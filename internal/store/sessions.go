package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sush8471/ScamDEX-AI/internal/domain"
)

// SlotPrefix prefixes every persisted session key.
const SlotPrefix = "session_"

// SlotKey returns the persistence key for a session.
func SlotKey(sessionID string) string {
	return SlotPrefix + sessionID
}

// SessionIDFromKey reverses SlotKey. It reports false for foreign keys.
func SessionIDFromKey(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, SlotPrefix)
	return id, ok && id != ""
}

// slot is the persisted shape of a session. Start and end times are not
// stored; they are rebuilt from message timestamps on load.
type slot struct {
	Messages              []domain.Message           `json:"messages"`
	Intel                 *domain.IntelligenceRecord `json:"intel"`
	InvestigationComplete bool                       `json:"investigationComplete"`
}

// SessionStore maps session state onto Repository slots.
type SessionStore struct {
	repo   Repository
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewSessionStore wraps repo.
func NewSessionStore(repo Repository, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("scamdex.internal.store.sessions"),
		now:    time.Now,
	}
}

// Load restores a session. A missing, unreadable or malformed slot yields a
// fresh zero-state session and false; Load never fails.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.SessionState, bool) {
	ctx, span := s.tracer.Start(ctx, "store.load", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	now := s.now()
	data, err := s.repo.Get(ctx, SlotKey(sessionID))
	span.SetAttributes(attribute.Bool("slot.found", err == nil))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			s.logger.Warn("failed to read session slot, starting fresh", "session_id", sessionID, "error", err)
		}
		return domain.NewSessionState(sessionID, now), false
	}

	var sl slot
	if err := json.Unmarshal(data, &sl); err != nil {
		span.RecordError(err)
		s.logger.Warn("malformed session slot, starting fresh", "session_id", sessionID, "error", err)
		return domain.NewSessionState(sessionID, now), false
	}

	state := domain.NewSessionState(sessionID, now)
	if sl.Messages != nil {
		state.Messages = sl.Messages
	}
	if sl.Intel != nil {
		state.Intel = *sl.Intel
		if state.Intel.ScamType == "" {
			state.Intel.ScamType = domain.LabelAnalyzing
		}
	}
	if n := len(state.Messages); n > 0 {
		state.StartedAt = state.Messages[0].Timestamp
		if sl.InvestigationComplete {
			state.MarkComplete(state.Messages[n-1].Timestamp)
		}
	} else if sl.InvestigationComplete {
		state.MarkComplete(now)
	}
	return state, true
}

// Save writes the session slot. Sessions with no messages are not persisted.
func (s *SessionStore) Save(ctx context.Context, state *domain.SessionState) error {
	if len(state.Messages) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "store.save", trace.WithAttributes(
		attribute.String("session.id", state.SessionID),
		attribute.Int("session.messages", len(state.Messages)),
	))
	defer span.End()

	intel := state.Intel
	data, err := json.Marshal(slot{
		Messages:              state.Messages,
		Intel:                 &intel,
		InvestigationComplete: state.InvestigationComplete,
	})
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.SessionID, err)
	}
	if err := s.repo.Put(ctx, SlotKey(state.SessionID), data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("save session %s: %w", state.SessionID, err)
	}
	return nil
}

// Delete removes the session slot.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, SlotKey(sessionID)); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

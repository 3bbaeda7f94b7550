package domain

import (
	"fmt"
	"time"
)

// SessionState is the authoritative record of one investigation.
type SessionState struct {
	SessionID             string             `json:"sessionId"`
	Messages              []Message          `json:"messages"`
	Intel                 IntelligenceRecord `json:"intel"`
	InvestigationComplete bool               `json:"investigationComplete"`
	StartedAt             time.Time          `json:"startedAt"`
	EndedAt               time.Time          `json:"endedAt,omitzero"`
}

// NewSessionState returns a zero-state session.
func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Messages:  []Message{},
		Intel:     NewIntelligenceRecord(now),
		StartedAt: now,
	}
}

// Append adds a message to the log and returns it.
func (s *SessionState) Append(sender Sender, text string, now time.Time) Message {
	msg := Message{
		ID:        int64(len(s.Messages) + 1),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
	s.Messages = append(s.Messages, msg)
	return msg
}

// MarkComplete flags the investigation as complete. The first call fixes EndedAt.
func (s *SessionState) MarkComplete(now time.Time) {
	if s.InvestigationComplete {
		return
	}
	s.InvestigationComplete = true
	s.EndedAt = now
}

// Elapsed returns the investigation duration, frozen once complete.
func (s *SessionState) Elapsed(now time.Time) time.Duration {
	end := now
	if s.InvestigationComplete && !s.EndedAt.IsZero() {
		end = s.EndedAt
	}
	d := end.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Clone returns a deep copy safe to hand to readers.
func (s *SessionState) Clone() SessionState {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	out.Intel = s.Intel.Clone()
	return out
}

// FormatElapsed renders a duration as mm:ss.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

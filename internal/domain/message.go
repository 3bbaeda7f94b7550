// Package domain contains core domain types for the ScamDEX investigation engine.
package domain

import (
	"time"
)

// Sender identifies who authored a message in the investigation log.
type Sender string

const (
	// SenderCounterparty is the party under investigation.
	SenderCounterparty Sender = "scammer"
	// SenderOperator is the autonomous investigating agent.
	SenderOperator Sender = "agent"
)

// Message is a single entry in the conversation log. Messages are immutable
// once appended.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

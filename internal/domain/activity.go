package domain

import (
	"encoding/json"
	"time"
)

// ActivityLogCapacity is the number of activity entries retained per session.
const ActivityLogCapacity = 8

// Severity classifies an activity log entry.
type Severity string

const (
	SeverityOK   Severity = "ok"
	SeverityWait Severity = "wait"
	SeverityWarn Severity = "warn"
	SeverityInfo Severity = "info"
)

// Activity log event names.
const (
	EventEngineActive     = "NEURAL_ENGINE_ACTIVE"
	EventListening        = "LISTENING_FOR_INTENT"
	EventURLDetected      = "URL_DETECTED"
	EventPhoneExtracted   = "PHONE_NUMBER_EXTRACTED"
	EventFreeOfferMatched = "FREE_OFFER_PATTERN_MATCHED"
	EventQRCodeTrigger    = "QR_CODE_TRIGGER_IDENTIFIED"
	EventPaymentTrigger   = "PAYMENT_TRIGGER_IDENTIFIED"
)

// ActivityEntry is one line of the investigation activity log.
type ActivityEntry struct {
	Severity  Severity  `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityLog is a fixed-capacity deque of activity entries.
// Pushing onto a full log evicts the oldest entry.
type ActivityLog struct {
	buf  [ActivityLogCapacity]ActivityEntry
	head int // index of the oldest entry
	size int
}

// Push appends an entry, evicting the oldest one when the log is full.
func (l *ActivityLog) Push(e ActivityEntry) {
	if l.size < ActivityLogCapacity {
		l.buf[(l.head+l.size)%ActivityLogCapacity] = e
		l.size++
		return
	}
	// Full: overwrite oldest and advance head.
	l.buf[l.head] = e
	l.head = (l.head + 1) % ActivityLogCapacity
}

// Entries returns the retained entries, oldest first.
func (l *ActivityLog) Entries() []ActivityEntry {
	out := make([]ActivityEntry, 0, l.size)
	for i := 0; i < l.size; i++ {
		out = append(out, l.buf[(l.head+i)%ActivityLogCapacity])
	}
	return out
}

// Len returns the number of retained entries.
func (l *ActivityLog) Len() int {
	return l.size
}

// Contains reports whether any retained entry carries one of the given messages.
func (l *ActivityLog) Contains(messages ...string) bool {
	for i := 0; i < l.size; i++ {
		msg := l.buf[(l.head+i)%ActivityLogCapacity].Message
		for _, m := range messages {
			if msg == m {
				return true
			}
		}
	}
	return false
}

// MarshalJSON encodes the log as an array, oldest first.
func (l ActivityLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

// UnmarshalJSON decodes an array, keeping only the most recent entries.
func (l *ActivityLog) UnmarshalJSON(data []byte) error {
	var entries []ActivityEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*l = ActivityLog{}
	for _, e := range entries {
		l.Push(e)
	}
	return nil
}

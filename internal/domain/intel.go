package domain

import (
	"time"
)

// Classification labels.
const (
	LabelAnalyzing     = "Analyzing..."
	LabelLikelyScam    = "Likely Scam"
	LabelScamConfirmed = "Scam Confirmed"
)

// IntelligenceRecord is the cumulative evidence gathered during one investigation.
// Indicator sets only grow until the session is reset.
type IntelligenceRecord struct {
	ScamDetected   bool         `json:"scamDetected"`
	ScamType       string       `json:"scamType"`
	Confidence     int          `json:"confidence"`
	PaymentHandles IndicatorSet `json:"upiIds"`
	PhoneNumbers   IndicatorSet `json:"phoneNumbers"`
	Links          IndicatorSet `json:"links"`
	Keywords       IndicatorSet `json:"keywords"`
	Activity       ActivityLog  `json:"logs"`
}

// NewIntelligenceRecord returns the zero-state record for a fresh session.
func NewIntelligenceRecord(now time.Time) IntelligenceRecord {
	r := IntelligenceRecord{ScamType: LabelAnalyzing}
	r.Log(SeverityOK, EventEngineActive, now)
	r.Log(SeverityWait, EventListening, now)
	return r
}

// Log appends an activity entry.
func (r *IntelligenceRecord) Log(sev Severity, message string, now time.Time) {
	r.Activity.Push(ActivityEntry{Severity: sev, Message: message, Timestamp: now})
}

// Clone returns a deep copy of the record.
func (r IntelligenceRecord) Clone() IntelligenceRecord {
	out := r
	out.PaymentHandles = r.PaymentHandles.Clone()
	out.PhoneNumbers = r.PhoneNumbers.Clone()
	out.Links = r.Links.Clone()
	out.Keywords = r.Keywords.Clone()
	return out
}

// Package agent talks to the external reasoning service that voices the
// investigating operator and may supply an authoritative scam verdict.
package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sush8471/ScamDEX-AI/internal/domain"
)

// Request is the body sent to the collaborator for one counterparty turn.
type Request struct {
	SessionID string           `json:"sessionId"`
	Message   string           `json:"message"`
	History   []domain.Message `json:"history"`
	Metadata  Metadata         `json:"metadata"`
}

// Metadata describes the channel of the conversation.
type Metadata struct {
	Platform  string    `json:"platform"`
	Timestamp time.Time `json:"timestamp"`
}

// Field is a verdict value the collaborator either declared or left out.
type Field[T any] struct {
	value    T
	declared bool
}

// Declared wraps a value supplied by the collaborator.
func Declared[T any](v T) Field[T] {
	return Field[T]{value: v, declared: true}
}

// Absent is a value the collaborator did not supply.
func Absent[T any]() Field[T] {
	return Field[T]{}
}

// Get returns the value and whether it was declared.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.declared
}

// Or returns the declared value, or fallback when absent.
func (f Field[T]) Or(fallback T) T {
	if f.declared {
		return f.value
	}
	return fallback
}

// IsDeclared reports whether the collaborator supplied the value.
func (f Field[T]) IsDeclared() bool {
	return f.declared
}

// VerdictKind summarises how much of a verdict the collaborator supplied.
type VerdictKind int

const (
	// VerdictAbsent carries no classification fields.
	VerdictAbsent VerdictKind = iota
	// VerdictPartial carries some classification fields; the rest come from local scoring.
	VerdictPartial
	// VerdictAuthoritative carries confidence, label and detection flag.
	VerdictAuthoritative
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictAuthoritative:
		return "authoritative"
	case VerdictPartial:
		return "partial"
	default:
		return "absent"
	}
}

// Verdict is the decoded collaborator response.
type Verdict struct {
	Reply                 Field[string]
	Confidence            Field[int]
	ScamType              Field[string]
	ScamDetected          Field[bool]
	InvestigationComplete Field[bool]
	IsFinal               Field[bool]
	Indicators            DeclaredIndicators
}

// DeclaredIndicators are indicators the collaborator extracted itself.
type DeclaredIndicators struct {
	PaymentHandles []string `json:"upiIds,omitempty"`
	PhoneNumbers   []string `json:"phoneNumbers,omitempty"`
	Links          []string `json:"links,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// Kind classifies the verdict by the classification fields it declares.
func (v Verdict) Kind() VerdictKind {
	n := 0
	for _, ok := range []bool{v.Confidence.IsDeclared(), v.ScamType.IsDeclared(), v.ScamDetected.IsDeclared()} {
		if ok {
			n++
		}
	}
	switch n {
	case 0:
		return VerdictAbsent
	case 3:
		return VerdictAuthoritative
	default:
		return VerdictPartial
	}
}

// RequestsCompletion reports whether the collaborator asked for the session to
// move to its result view: an explicit final flag, or a detected scam declared
// above 90% confidence.
func (v Verdict) RequestsCompletion() bool {
	if v.IsFinal.Or(false) {
		return true
	}
	conf, ok := v.Confidence.Get()
	return ok && v.ScamDetected.Or(false) && conf > 90
}

type wireResponse struct {
	AgentReply            *string             `json:"agentReply"`
	Reply                 *string             `json:"reply"`
	Confidence            *float64            `json:"confidence"`
	ScamType              *string             `json:"scamType"`
	ScamDetected          *bool               `json:"scamDetected"`
	InvestigationComplete *bool               `json:"investigationComplete"`
	IsFinal               *bool               `json:"isFinal"`
	ExtractedIntelligence *DeclaredIndicators `json:"extractedIntelligence"`
}

// DecodeVerdict parses a collaborator response body.
func DecodeVerdict(data []byte) (Verdict, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return Verdict{}, fmt.Errorf("decode collaborator response: %w", err)
	}

	var v Verdict
	switch {
	case nonBlank(w.AgentReply):
		v.Reply = Declared(*w.AgentReply)
	case nonBlank(w.Reply):
		v.Reply = Declared(*w.Reply)
	}
	if w.Confidence != nil {
		// Clamp before converting so huge values cannot overflow int.
		v.Confidence = Declared(int(math.Round(max(0, min(*w.Confidence, 100)))))
	}
	if nonBlank(w.ScamType) {
		v.ScamType = Declared(*w.ScamType)
	}
	if w.ScamDetected != nil {
		v.ScamDetected = Declared(*w.ScamDetected)
	}
	if w.InvestigationComplete != nil {
		v.InvestigationComplete = Declared(*w.InvestigationComplete)
	}
	if w.IsFinal != nil {
		v.IsFinal = Declared(*w.IsFinal)
	}
	if w.ExtractedIntelligence != nil {
		v.Indicators = *w.ExtractedIntelligence
	}
	return v, nil
}

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

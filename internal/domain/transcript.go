package domain

import (
	"time"
)

// DefaultPlatform is the channel reported in exported transcripts.
const DefaultPlatform = "WhatsApp/SMS"

// Transcript is the exported artifact of an investigation.
type Transcript struct {
	SessionID             string                 `json:"sessionId"`
	Platform              string                 `json:"platform"`
	StartedAt             time.Time              `json:"startedAt"`
	EndedAt               time.Time              `json:"endedAt"`
	RiskAssessment        RiskAssessment         `json:"riskAssessment"`
	Messages              []TranscriptMessage    `json:"messages"`
	ExtractedIntelligence TranscriptIntelligence `json:"extractedIntelligence"`
}

// RiskAssessment summarises the verdict. ConfidenceScore is in [0,1].
type RiskAssessment struct {
	ScamDetected    bool    `json:"scamDetected"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// TranscriptMessage is a message without its log ordinal.
type TranscriptMessage struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptIntelligence lists the harvested indicators.
type TranscriptIntelligence struct {
	UPIIDs             []string `json:"upiIds"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	PhishingLinks      []string `json:"phishingLinks"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// NewTranscript builds the export artifact for a session.
// StartedAt is the first message timestamp, or now for an empty log.
func NewTranscript(s *SessionState, platform string, now time.Time) Transcript {
	if platform == "" {
		platform = DefaultPlatform
	}
	started := now
	if len(s.Messages) > 0 {
		started = s.Messages[0].Timestamp
	}

	msgs := make([]TranscriptMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		msgs = append(msgs, TranscriptMessage{Sender: m.Sender, Text: m.Text, Timestamp: m.Timestamp})
	}

	return Transcript{
		SessionID: s.SessionID,
		Platform:  platform,
		StartedAt: started,
		EndedAt:   now,
		RiskAssessment: RiskAssessment{
			ScamDetected:    s.Intel.ScamDetected,
			ConfidenceScore: float64(s.Intel.Confidence) / 100,
		},
		Messages: msgs,
		ExtractedIntelligence: TranscriptIntelligence{
			UPIIDs:             s.Intel.PaymentHandles.Items(),
			PhoneNumbers:       s.Intel.PhoneNumbers.Items(),
			PhishingLinks:      s.Intel.Links.Items(),
			SuspiciousKeywords: s.Intel.Keywords.Items(),
		},
	}
}

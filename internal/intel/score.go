package intel

import (
	"github.com/sush8471/ScamDEX-AI/internal/domain"
)

// Score increments. Each category contributes at most once per message.
const (
	KeywordBonus = 15
	PhoneBonus   = 20
	LinkBonus    = 25
)

const (
	// LocalCeiling caps heuristic confidence; only an authoritative verdict reaches 100.
	LocalCeiling = 95
	// AuthoritativeCeiling caps verdicts supplied by the collaborator.
	AuthoritativeCeiling = 100

	// DetectionThreshold is the confidence above which a scam counts as detected.
	DetectionThreshold = 70
	likelyThreshold    = 30

	maxIndicatorCount = 5
)

// Score returns the confidence after observing text, starting from prior.
func Score(text string, prior int) int {
	increment := 0
	if len(ExtractKeywords(text)) > 0 {
		increment += KeywordBonus
	}
	if HasPhone(text) {
		increment += PhoneBonus
	}
	if HasLink(text) {
		increment += LinkBonus
	}
	return clamp(prior+increment, 0, LocalCeiling)
}

// ClampAuthoritative bounds a collaborator-declared confidence to [0,100].
func ClampAuthoritative(confidence int) int {
	return clamp(confidence, 0, AuthoritativeCeiling)
}

// Classify maps a confidence value to its label.
func Classify(confidence int) string {
	switch {
	case confidence > DetectionThreshold:
		return domain.LabelScamConfirmed
	case confidence > likelyThreshold:
		return domain.LabelLikelyScam
	default:
		return domain.LabelAnalyzing
	}
}

// Detected reports whether a confidence value alone implies detection.
func Detected(confidence int) bool {
	return confidence > DetectionThreshold
}

// IndicatorCount counts the evidence categories present in a record, for
// progress display only. It never feeds back into confidence.
func IndicatorCount(r *domain.IntelligenceRecord) int {
	count := 0
	if r.Keywords.Len() > 0 {
		count++
	}
	if r.PhoneNumbers.Len() > 0 {
		count++
	}
	if r.Links.Len() > 0 {
		count++
	}
	if r.PaymentHandles.Len() > 0 || r.ScamDetected {
		count++
	}
	if r.Activity.Contains(domain.EventFreeOfferMatched, domain.EventQRCodeTrigger, domain.EventPaymentTrigger) {
		count++
	}
	return min(count, maxIndicatorCount)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

package session

import (
	"time"

	"github.com/sush8471/ScamDEX-AI/internal/agent"
	"github.com/sush8471/ScamDEX-AI/internal/domain"
	"github.com/sush8471/ScamDEX-AI/internal/fallback"
	"github.com/sush8471/ScamDEX-AI/internal/intel"
)

// applyVerdict merges a collaborator verdict and the locally extracted
// indicators of text into rec. Declared fields win per field; the rest come
// from local scoring. It reports whether the scam flag turned true.
func applyVerdict(rec *domain.IntelligenceRecord, text string, v agent.Verdict, now time.Time) bool {
	conf := intel.Score(text, rec.Confidence)
	if declared, ok := v.Confidence.Get(); ok {
		conf = intel.ClampAuthoritative(declared)
	}
	scamType := v.ScamType.Or(intel.Classify(conf))
	detected := v.ScamDetected.Or(intel.Detected(conf))

	found := intel.Extract(text)
	if len(found.Links) > 0 {
		rec.Log(domain.SeverityInfo, domain.EventURLDetected, now)
	}
	if len(found.Phones) > 0 {
		rec.Log(domain.SeverityInfo, domain.EventPhoneExtracted, now)
	}
	if intel.MatchesFreeOffer(text) {
		rec.Log(domain.SeverityWarn, domain.EventFreeOfferMatched, now)
	}
	if intel.MatchesQRCode(text) {
		rec.Log(domain.SeverityWarn, domain.EventQRCodeTrigger, now)
	}
	firstDetection := detected && !rec.ScamDetected
	if firstDetection {
		rec.Log(domain.SeverityWarn, domain.EventPaymentTrigger, now)
	}

	rec.Links.Add(found.Links...)
	rec.Links.Add(v.Indicators.Links...)
	rec.Keywords.Add(found.Keywords...)
	rec.Keywords.Add(v.Indicators.Keywords...)
	rec.PhoneNumbers.Add(found.Phones...)
	rec.PhoneNumbers.Add(v.Indicators.PhoneNumbers...)
	rec.PaymentHandles.Add(v.Indicators.PaymentHandles...)

	rec.Confidence = conf
	rec.ScamType = scamType
	rec.ScamDetected = detected
	return firstDetection
}

// applyFallback merges a canned reply's synthetic indicators and the locally
// extracted indicators of text into rec, scoring locally.
func applyFallback(rec *domain.IntelligenceRecord, text string, r fallback.Reply, now time.Time) bool {
	rec.PaymentHandles.Add(r.PaymentHandle)
	rec.Links.Add(r.Link)
	rec.PhoneNumbers.Add(r.Phone)

	conf := intel.Score(text, rec.Confidence)
	detected := intel.Detected(conf)
	firstDetection := detected && !rec.ScamDetected

	found := intel.Extract(text)
	rec.Links.Add(found.Links...)
	rec.Keywords.Add(found.Keywords...)
	rec.PhoneNumbers.Add(found.Phones...)

	if len(found.Links) > 0 {
		rec.Log(domain.SeverityInfo, domain.EventURLDetected, now)
	}
	if len(found.Phones) > 0 {
		rec.Log(domain.SeverityInfo, domain.EventPhoneExtracted, now)
	}
	if len(found.Keywords) > 0 {
		rec.Log(domain.SeverityWarn, domain.EventFreeOfferMatched, now)
	}
	if intel.MatchesQRCode(text) {
		rec.Log(domain.SeverityWarn, domain.EventQRCodeTrigger, now)
	}

	rec.Confidence = conf
	rec.ScamType = intel.Classify(conf)
	rec.ScamDetected = detected
	return firstDetection
}

// Package intel extracts scam indicators from message text and scores them.
//
// Everything here is lexical and side-effect free: the same input always
// yields the same indicators, score and label.
package intel

import (
	"regexp"
	"strings"
)

var (
	// Scheme URLs, www. hosts, and bare domain.tld/path forms.
	linkPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|[a-z0-9-]+\.[a-z]{2,}/\S*)`)

	// Optional country code, optional area code, exchange and line number.
	phonePattern = regexp.MustCompile(`(\+?\d{1,4}[-.\s]?)?(\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}`)
)

// Watchlist is the set of keywords treated as scam bait.
var Watchlist = []string{
	"free",
	"100% off",
	"urgent",
	"win",
	"winner",
	"prize",
	"cash",
	"account blocked",
	"verify",
}

var (
	freeOfferCues = []string{"free", "100% off", "win", "prize"}
	qrCodeCues    = []string{"qr", "scan"}
)

// Indicators holds what a single message revealed.
type Indicators struct {
	Links    []string
	Phones   []string
	Keywords []string
}

// Empty reports whether nothing was found.
func (i Indicators) Empty() bool {
	return len(i.Links) == 0 && len(i.Phones) == 0 && len(i.Keywords) == 0
}

// Extract runs all extractors over text.
func Extract(text string) Indicators {
	return Indicators{
		Links:    ExtractLinks(text),
		Phones:   ExtractPhones(text),
		Keywords: ExtractKeywords(text),
	}
}

// ExtractLinks returns every URL-like substring in text.
func ExtractLinks(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

// ExtractPhones returns every phone-number-like substring in text.
func ExtractPhones(text string) []string {
	return phonePattern.FindAllString(text, -1)
}

// ExtractKeywords returns the watchlist entries contained in text, case-insensitively.
func ExtractKeywords(text string) []string {
	return containsAny(text, Watchlist)
}

// HasLink reports whether text contains a URL-like substring.
func HasLink(text string) bool {
	return linkPattern.MatchString(text)
}

// HasPhone reports whether text contains a phone-number-like substring.
func HasPhone(text string) bool {
	return phonePattern.MatchString(text)
}

// MatchesFreeOffer reports whether text carries a free-offer lure.
func MatchesFreeOffer(text string) bool {
	return len(containsAny(text, freeOfferCues)) > 0
}

// MatchesQRCode reports whether text asks for a QR code scan.
func MatchesQRCode(text string) bool {
	return len(containsAny(text, qrCodeCues)) > 0
}

func containsAny(text string, list []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range list {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

package intel

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sush8471/ScamDEX-AI/internal/domain"
)

func TestExtractPaymentPrompt(t *testing.T) {
	t.Parallel()

	text := "Send payment to 9876543210 now, free prize!"
	got := Extract(text)

	assert.Equal(t, []string{"9876543210"}, got.Phones)
	assert.Contains(t, got.Keywords, "free")
	assert.Contains(t, got.Keywords, "prize")
	assert.Empty(t, got.Links)
	assert.Equal(t, 35, Score(text, 0))
	assert.Equal(t, domain.LabelLikelyScam, Classify(Score(text, 0)))
}

func TestExtractLinkCapsAtLocalCeiling(t *testing.T) {
	t.Parallel()

	text := "Visit http://scam.example/login"
	assert.Equal(t, []string{"http://scam.example/login"}, ExtractLinks(text))
	assert.Empty(t, ExtractPhones(text))

	score := Score(text, 80)
	assert.Equal(t, 95, score)
	assert.Equal(t, domain.LabelScamConfirmed, Classify(score))
}

func TestExtractLinkForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"https", "go to https://bank-verify.io/x?id=1 today", []string{"https://bank-verify.io/x?id=1"}},
		{"www", "open www.prizes.com now", []string{"www.prizes.com"}},
		{"bare path", "see claim.in/reward please", []string{"claim.in/reward"}},
		{"uppercase scheme", "HTTP://EVIL.COM/A", []string{"HTTP://EVIL.COM/A"}},
		{"no tld path", "example.com without a path", nil},
		{"plain text", "hello there", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, ExtractLinks(tt.text)); diff != "" {
				t.Errorf("ExtractLinks(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestExtractPhoneForms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"555-123-4567"}, ExtractPhones("Call 555-123-4567"))
	assert.Equal(t, []string{"123.4567"}, ExtractPhones("ext 123.4567"))
	assert.Empty(t, ExtractPhones("order 12345"))
}

func TestExtractKeywordsCaseInsensitive(t *testing.T) {
	t.Parallel()

	got := ExtractKeywords("URGENT: You are a WINNER, your Account Blocked, 100% OFF")
	assert.Equal(t, []string{"100% off", "urgent", "win", "winner", "account blocked"}, got)
	assert.Empty(t, ExtractKeywords("nothing to see"))
}

func TestExtractorsAreIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"Send payment to 9876543210 now, free prize!",
		"Visit http://scam.example/login or www.x.org, call +1 (555) 123-4567",
		"plain",
	}
	for _, in := range inputs {
		first := Extract(in)
		second := Extract(in)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Extract(%q) not deterministic:\n%s", in, diff)
		}
	}
}

func TestScoreCategoriesCountOnce(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KeywordBonus, Score("free cash prize winner", 0))
	assert.Equal(t, PhoneBonus, Score("555-123-4567 and 555-765-4321", 0))
	assert.Equal(t, LinkBonus+KeywordBonus, Score("free http://a.example/x", 0))
	assert.Equal(t, 10, Score("nothing", 10))
}

func TestScoreStaysInLocalRange(t *testing.T) {
	t.Parallel()

	text := "free prize at http://x.example/a call 555-123-4567"
	for prior := -50; prior <= 150; prior += 5 {
		got := Score(text, prior)
		require.GreaterOrEqual(t, got, 0)
		require.LessOrEqual(t, got, LocalCeiling)
	}
	assert.Equal(t, 95, Score("", 100))
}

func TestClampAuthoritative(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ClampAuthoritative(-3))
	assert.Equal(t, 100, ClampAuthoritative(140))
	assert.Equal(t, 97, ClampAuthoritative(97))
}

func TestClassifyBandsAreMonotonicWithoutGaps(t *testing.T) {
	t.Parallel()

	rank := map[string]int{
		domain.LabelAnalyzing:     0,
		domain.LabelLikelyScam:    1,
		domain.LabelScamConfirmed: 2,
	}
	prev := 0
	for c := 0; c <= 100; c++ {
		label := Classify(c)
		r, ok := rank[label]
		require.Truef(t, ok, "confidence %d mapped to unknown label %q", c, label)
		require.GreaterOrEqual(t, r, prev)
		prev = r
	}
	assert.Equal(t, domain.LabelAnalyzing, Classify(30))
	assert.Equal(t, domain.LabelLikelyScam, Classify(31))
	assert.Equal(t, domain.LabelLikelyScam, Classify(70))
	assert.Equal(t, domain.LabelScamConfirmed, Classify(71))
}

func TestIndicatorCount(t *testing.T) {
	t.Parallel()

	r := domain.NewIntelligenceRecord(time.Now())
	assert.Equal(t, 0, IndicatorCount(&r))

	r.Keywords.Add("free")
	r.PhoneNumbers.Add("555-123-4567")
	assert.Equal(t, 2, IndicatorCount(&r))

	r.ScamDetected = true
	r.Links.Add("http://x.example/a")
	r.Log(domain.SeverityWarn, domain.EventQRCodeTrigger, time.Now())
	assert.Equal(t, 5, IndicatorCount(&r))
	assert.Equal(t, 0, r.Confidence, "indicator count must not touch confidence")
}

func TestCueMatchers(t *testing.T) {
	t.Parallel()

	assert.True(t, MatchesFreeOffer("You WIN a car"))
	assert.False(t, MatchesFreeOffer("urgent transfer"))
	assert.True(t, MatchesQRCode("Scan this QR"))
	assert.False(t, MatchesQRCode("pay by card"))
}

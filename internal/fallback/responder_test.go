package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondBranches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantText string
		check    func(t *testing.T, r Reply)
	}{
		{
			name:     "payment cue",
			in:       "Send to my UPI",
			wantText: "Is this the right UPI? Should I pay now?",
			check: func(t *testing.T, r Reply) {
				assert.Equal(t, "secure.pay@okaxis", r.PaymentHandle)
				assert.False(t, r.Terminal)
			},
		},
		{
			name:     "at sign counts as payment cue",
			in:       "pay rahul@ybl",
			wantText: "Is this the right UPI? Should I pay now?",
		},
		{
			name:     "link cue",
			in:       "click the link",
			wantText: "The link isn't opening on my phone. Should I use a different browser?",
			check: func(t *testing.T, r Reply) {
				assert.Equal(t, "https://secure-verification-portal.net/login", r.Link)
			},
		},
		{
			name:     "phone cue",
			in:       "Call me",
			wantText: "Can I call this number to verify? What's your name?",
			check: func(t *testing.T, r Reply) {
				assert.Equal(t, "+91 98765 43210", r.Phone)
			},
		},
		{
			name:     "completion cue is terminal",
			in:       "I have PAID",
			wantText: "I sent it. When will I get the benefits?",
			check: func(t *testing.T, r Reply) {
				assert.True(t, r.Terminal)
				assert.Empty(t, r.PaymentHandle)
			},
		},
		{
			name:     "generic probe",
			in:       "hello sir",
			wantText: "So how does this work? Is there a registration fee?",
			check: func(t *testing.T, r Reply) {
				assert.False(t, r.Terminal)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := Respond(tt.in)
			assert.Equal(t, tt.wantText, r.Text)
			if tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}

func TestRespondFirstMatchWins(t *testing.T) {
	t.Parallel()

	// Mentions payment, link, phone and completion cues at once.
	r := Respond("paid via upi, link sent, call my number")
	assert.Equal(t, "secure.pay@okaxis", r.PaymentHandle)
	assert.False(t, r.Terminal)

	r = Respond("done, here is the http link")
	assert.NotEmpty(t, r.Link)
	assert.False(t, r.Terminal)
}

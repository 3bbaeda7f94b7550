package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVerdictReplyPrecedence(t *testing.T) {
	t.Parallel()

	v, err := DecodeVerdict([]byte(`{"agentReply": "primary", "reply": "secondary"}`))
	require.NoError(t, err)
	assert.Equal(t, "primary", v.Reply.Or(""))

	v, err = DecodeVerdict([]byte(`{"agentReply": "  ", "reply": "secondary"}`))
	require.NoError(t, err)
	assert.Equal(t, "secondary", v.Reply.Or(""))

	v, err = DecodeVerdict([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, v.Reply.IsDeclared())
	assert.Equal(t, VerdictAbsent, v.Kind())
}

func TestDecodeVerdictFields(t *testing.T) {
	t.Parallel()

	v, err := DecodeVerdict([]byte(`{"confidence": 72.6, "scamDetected": false, "scamType": "", "isFinal": true}`))
	require.NoError(t, err)

	conf, ok := v.Confidence.Get()
	assert.True(t, ok)
	assert.Equal(t, 73, conf)

	detected, ok := v.ScamDetected.Get()
	assert.True(t, ok)
	assert.False(t, detected)

	assert.False(t, v.ScamType.IsDeclared(), "blank scamType counts as absent")
	assert.False(t, v.InvestigationComplete.IsDeclared())
	assert.Equal(t, VerdictPartial, v.Kind())
	assert.True(t, v.RequestsCompletion())
}

func TestDecodeVerdictClampsConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		want int
	}{
		{`{"confidence": 1e20, "scamDetected": true}`, 100},
		{`{"confidence": 99999999999999999999, "scamDetected": true}`, 100},
		{`{"confidence": 140}`, 100},
		{`{"confidence": -5}`, 0},
		{`{"confidence": -1e20}`, 0},
		{`{"confidence": 99.6}`, 100},
	}
	for _, tt := range tests {
		v, err := DecodeVerdict([]byte(tt.body))
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Confidence.Or(-1), tt.body)
	}

	v, err := DecodeVerdict([]byte(`{"confidence": 1e20, "scamDetected": true}`))
	require.NoError(t, err)
	assert.True(t, v.RequestsCompletion())
}

func TestDecodeVerdictRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeVerdict([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeVerdict([]byte(`{"confidence": "high"}`))
	assert.Error(t, err)
}

func TestRequestsCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    Verdict
		want bool
	}{
		{"final flag", Verdict{IsFinal: Declared(true)}, true},
		{"high confidence detection", Verdict{Confidence: Declared(91), ScamDetected: Declared(true)}, true},
		{"exactly ninety", Verdict{Confidence: Declared(90), ScamDetected: Declared(true)}, false},
		{"not detected", Verdict{Confidence: Declared(99), ScamDetected: Declared(false)}, false},
		{"detection without confidence", Verdict{ScamDetected: Declared(true)}, false},
		{"absent", Verdict{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.v.RequestsCompletion())
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	t.Parallel()

	f := Absent[int]()
	_, ok := f.Get()
	assert.False(t, ok)
	assert.Equal(t, 7, f.Or(7))
	assert.Equal(t, 3, Declared(3).Or(7))
	assert.Equal(t, "authoritative", VerdictAuthoritative.String())
}

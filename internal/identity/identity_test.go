package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSessionID(t *testing.T) {
	t.Parallel()

	a, b := NewSessionID(), NewSessionID()
	assert.NotEqual(t, a, b)
	assert.True(t, ValidSessionID(a))
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestValidSessionID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{"sess-1", true},
		{"1717171717171", true},
		{"a.b:c_d", true},
		{"", false},
		{"../etc/passwd", false},
		{"has space", false},
		{string(make([]byte, 129)), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidSessionID(tt.id), "id %q", tt.id)
	}
}

func TestIPFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:4312"
	assert.Equal(t, "203.0.113.9", IPFromRequest(r))

	r.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", IPFromRequest(r))
}

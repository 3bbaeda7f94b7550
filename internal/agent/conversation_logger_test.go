package agent

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// readEvents skips unreadable lines; it runs inside Eventually conditions.
func readEvents(path string) []ConversationLogEvent {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var events []ConversationLogEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev ConversationLogEvent
		if json.Unmarshal(scanner.Bytes(), &ev) == nil {
			events = append(events, ev)
		}
	}
	return events
}

func TestConversationLoggerAppendsPerSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	logger, err := NewConversationLogger(ConversationLogConfig{Enabled: true, Dir: dir, QueueSize: 16}, nil)
	require.NoError(t, err)

	logger.Log(ConversationLogEvent{SessionID: "sess-1", Direction: "inbound", EventType: "counterparty_message", ContentRaw: "pay   now\n"})
	logger.Log(ConversationLogEvent{SessionID: "sess-1", Direction: "outbound", EventType: "operator_reply", ContentRaw: "Which account?"})
	logger.Log(ConversationLogEvent{SessionID: "sess-2", ContentRaw: "other"})
	require.NoError(t, logger.Close(), "close drains the queue")

	events := readEvents(filepath.Join(dir, "sess-1.ndjson"))
	require.Len(t, events, 2)
	assert.Equal(t, "pay   now\n", events[0].ContentRaw)
	assert.Equal(t, "pay now", events[0].Content)
	assert.NotEmpty(t, events[0].Timestamp)
	assert.Equal(t, "operator_reply", events[1].EventType)

	assert.Len(t, readEvents(filepath.Join(dir, "sess-2.ndjson")), 1)
}

func TestConversationLoggerWritesBeforeClose(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewConversationLogger(ConversationLogConfig{Enabled: true, Dir: dir}, nil)
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	logger.Log(ConversationLogEvent{SessionID: "live", ContentRaw: "hello"})
	assert.Eventually(t, func() bool {
		return len(readEvents(filepath.Join(dir, "live.ndjson"))) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestConversationLoggerSanitizesFileName(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	logger, err := NewConversationLogger(ConversationLogConfig{Enabled: true, Dir: dir}, nil)
	require.NoError(t, err)

	logger.Log(ConversationLogEvent{SessionID: "../escape", ContentRaw: "x"})
	require.NoError(t, logger.Close())
	assert.NotPanics(t, func() {
		logger.Log(ConversationLogEvent{SessionID: "late", ContentRaw: "x"})
	}, "logging after close is dropped")

	_, err = os.Stat(filepath.Join(dir, ".._escape.ndjson"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "late.ndjson"))
	assert.True(t, os.IsNotExist(err))
}

func TestDisabledConversationLoggerIsNoop(t *testing.T) {
	t.Parallel()

	logger, err := NewConversationLogger(ConversationLogConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.IsType(t, NoopConversationLogger{}, logger)
	logger.Log(ConversationLogEvent{SessionID: "s"})
	assert.NoError(t, logger.Close())
}

func TestCleanForReadability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"  spaced\t\tout \n", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanForReadability(tt.raw), "raw %q", tt.raw)
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sush8471/ScamDEX-AI/internal/domain"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReplayPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello, you won a free prize\n\nSend 500 to secure@upi now\ndone\n"), 0o600))

	out, err := execute(t, "", "replay", path, "--fast", "--store", "memory")
	require.NoError(t, err)

	assert.Contains(t, out, "operator> So how does this work? Is there a registration fee?")
	assert.Contains(t, out, "operator> Is this the right UPI? Should I pay now?")
	assert.Contains(t, out, "operator> I sent it. When will I get the benefits?")
	assert.Contains(t, out, "secure.pay@okaxis")
	assert.Contains(t, out, "Keywords:")
}

func TestReplayTranscriptFile(t *testing.T) {
	tr := domain.Transcript{Messages: []domain.TranscriptMessage{
		{Sender: domain.SenderCounterparty, Text: "Please call this number 9876543210"},
		{Sender: domain.SenderOperator, Text: "ignored"},
	}}
	data, err := json.Marshal(tr)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "transcript.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := execute(t, "", "replay", path, "--fast", "--store", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "scammer>  Please call this number 9876543210")
	assert.NotContains(t, out, "scammer>  ignored")
	assert.Contains(t, out, "operator> Can I call this number to verify? What's your name?")
}

func TestReplayRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))

	_, err := execute(t, "", "replay", path, "--store", "memory")
	assert.Error(t, err)
}

func TestChatThenExportFromSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := execute(t, "Your account blocked, verify at www.bank-kyc.example/login\n   \n",
		"chat", "--fast", "--store", "sqlite", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "(ignored: empty)")

	first, _, _ := strings.Cut(out, "\n")
	id := strings.TrimSuffix(strings.Fields(first)[1], ".")
	require.NotEmpty(t, id)

	out, err = execute(t, "", "export", id, "--store", "sqlite", "--db", db)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, id, got["sessionId"])
	assert.Len(t, got["messages"], 2)
}

func TestExportUnknownSessionFails(t *testing.T) {
	_, err := execute(t, "", "export", "never-seen", "--store", "sqlite", "--db", filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}

func TestStoreDefaultsToSQLite(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	flag := newRootCmd().PersistentFlags().Lookup("store")
	require.NotNil(t, flag)
	assert.Equal(t, "sqlite", flag.DefValue)

	t.Setenv("STORE_BACKEND", "memory")
	assert.Equal(t, "memory", newRootCmd().PersistentFlags().Lookup("store").DefValue)
}

func TestExportReadsDefaultStore(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	db := filepath.Join(t.TempDir(), "default.db")

	out, err := execute(t, "hello there\n", "chat", "--fast", "--db", db)
	require.NoError(t, err)
	first, _, _ := strings.Cut(out, "\n")
	id := strings.TrimSuffix(strings.Fields(first)[1], ".")

	out, err = execute(t, "", "export", id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"sessionId": "`+id+`"`)
}

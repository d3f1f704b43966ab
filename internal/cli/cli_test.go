package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/frontdesk/internal/display"
	"github.com/mesh-intelligence/frontdesk/internal/frontdesk"
	"github.com/mesh-intelligence/frontdesk/internal/recording"
	"github.com/mesh-intelligence/frontdesk/internal/view"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

const wardData = `{
	"equipment": [{"id": 1, "name": "Arthroscope", "status": null}],
	"room": [{"id": 1, "name": "OR-3"}, {"id": 2, "name": "OR-5"}],
	"tool": [{"id": 1, "info_id": 1, "status": "InUse"}],
	"patient": [{"id": 1, "first_name": "Ann", "last_name": "Lee"}, {"id": 2, "first_name": "Bo", "last_name": "Kim"}],
	"operation": [
		{"id": 1, "label": "Knee Repair", "status": "PreOperative", "patient_id": 1, "room_id": 1,
			"start_time": "2024-01-01 08:00:00", "end_time": "2024-01-01 10:00:00"},
		{"id": 2, "label": "Bypass", "status": "InProgress", "patient_id": 2, "room_id": 2,
			"start_time": "2024-01-01 09:00:00", "end_time": "2024-01-01 13:00:00"}
	],
	"operation_tool": [
		{"id": 1, "operation_id": 1, "tool_id": 1, "on_site": 1},
		{"id": 2, "operation_id": 1, "tool_id": 7, "on_site": 0}
	]
}`

// runCLI executes the root command with isolated directories and returns
// stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{
		"--config-dir", filepath.Join(dir, "config"),
		"--data-dir", filepath.Join(dir, "data"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

// writeRecording stores messages as a JSONL recording and returns its path.
func writeRecording(t *testing.T, dir string, messages ...string) string {
	t.Helper()
	path := filepath.Join(dir, "session.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, m := range messages {
		require.NoError(t, enc.Encode(recording.Entry{Session: "test", ReceivedAt: time.Now(), Message: m}))
	}
	return path
}

func envelope(t *testing.T, table string, op types.MessageOperation, data string) string {
	t.Helper()
	raw, err := json.Marshal(types.Envelope{TableName: table, Operation: op, StatusCode: "200", Data: data})
	require.NoError(t, err)
	return string(raw)
}

func wardRecording(t *testing.T, dir string) string {
	return writeRecording(t, dir,
		"not json",
		envelope(t, "operation", types.OpInitialize, wardData),
		envelope(t, "operation", types.OpUpdate, `{"id": 1, "new_row_data": {"id": 1, "label": "Knee Replacement",
			"status": "PreOperative", "patient_id": 1, "room_id": 1,
			"start_time": "2024-01-01 08:00:00", "end_time": "2024-01-01 10:00:00"}}`),
	)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "frontdesk v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInitWritesConfigOnce(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	assert.FileExists(t, filepath.Join(dir, "config", configFileExt))
	assert.DirExists(t, filepath.Join(dir, "data"))

	out, err = runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Kept existing")
}

func TestReplayTable(t *testing.T) {
	dir := t.TempDir()
	path := wardRecording(t, dir)

	out, err := runCLI(t, dir, "replay", path, "--at", "2024-01-01 07:00:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Knee Replacement")
	assert.Contains(t, out, "1/2 (50%)")
	assert.Contains(t, out, "Upcoming")
	assert.Contains(t, out, "Total: 1 operation(s)")
	assert.NotContains(t, out, "Bypass")
}

func TestReplayPanels(t *testing.T) {
	dir := t.TempDir()
	path := wardRecording(t, dir)

	out, err := runCLI(t, dir, "--json", "replay", path, "--panel", "in-progress")
	require.NoError(t, err)
	var rows []view.PreOperativeDefault
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Bypass", rows[0].OpLabel)

	out, err = runCLI(t, dir, "--json", "replay", path, "--search", "nothing matches")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Empty(t, rows)
}

func TestReplayEnginesAgree(t *testing.T) {
	dir := t.TempDir()
	path := wardRecording(t, dir)

	for _, extra := range [][]string{
		nil,
		{"--operation", "1"},
		{"--operation", "42"},
		{"--search", "ann"},
	} {
		goArgs := append([]string{"--json", "replay", path, "--engine", "go"}, extra...)
		sqlArgs := append([]string{"--json", "replay", path, "--engine", "sql"}, extra...)

		goOut, err := runCLI(t, dir, goArgs...)
		require.NoError(t, err, extra)
		sqlOut, err := runCLI(t, dir, sqlArgs...)
		require.NoError(t, err, extra)
		assert.JSONEq(t, goOut, sqlOut, "args %v", extra)
	}
}

func TestReplayOperationDrillDown(t *testing.T) {
	dir := t.TempDir()
	path := wardRecording(t, dir)

	out, err := runCLI(t, dir, "replay", path, "--operation", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Arthroscope")
	assert.Contains(t, out, view.UnknownTool)
	assert.Contains(t, out, "Total: 2 tool(s)")
}

func TestReplayErrors(t *testing.T) {
	dir := t.TempDir()
	path := wardRecording(t, dir)

	_, err := runCLI(t, dir, "replay", path, "--engine", "lisp")
	assert.ErrorContains(t, err, "unknown engine")

	_, err = runCLI(t, dir, "replay", path, "--panel", "recovery")
	assert.Error(t, err)

	_, err = runCLI(t, dir, "replay", filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)

	_, err = runCLI(t, dir, "replay")
	assert.Error(t, err)
}

func TestWatchRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "watch", "--panel", "recovery")
	assert.Error(t, err)

	_, err = runCLI(t, dir, "watch", "--feed", "carrier-pigeon")
	assert.ErrorIs(t, err, types.ErrFeedUnknown)

	_, err = runCLI(t, dir, "watch", "--interval", "0s")
	assert.ErrorContains(t, err, "interval")
}

func TestWatchConnectionNotice(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := frontdesk.New(frontdesk.WithLogger(log))
	assert.Equal(t, display.NoticeAwaitingInitialize, connectionNotice(s))

	require.True(t, s.OnMessage([]byte(envelope(t, "operation", types.OpInitialize, wardData))))
	assert.Empty(t, connectionNotice(s))

	s.OnDisconnect()
	assert.Equal(t, display.NoticeStale, connectionNotice(s))

	require.True(t, s.OnMessage([]byte(envelope(t, "operation", types.OpInitialize, wardData))))
	assert.Empty(t, connectionNotice(s))
}

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	closeFn, err := Init(Options{})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInitText(t *testing.T) {
	t.Cleanup(func() { _, _ = Init(Options{}) })

	var buf bytes.Buffer
	_, err := Init(Options{Enabled: true, Level: slog.LevelDebug, Output: &buf})
	require.NoError(t, err)

	Debug("compiled master", "master", "cpu0")
	Warn("shadowed", "index", 2)
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "master=cpu0")
	assert.Contains(t, out, "level=WARN")
}

func TestInitJSONLevel(t *testing.T) {
	t.Cleanup(func() { _, _ = Init(Options{}) })

	var buf bytes.Buffer
	_, err := Init(Options{Enabled: true, JSON: true, Output: &buf})
	require.NoError(t, err)

	Debug("hidden")
	Info("shown", "slots", 8)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.EqualValues(t, 8, rec["slots"])
}

func TestInitLogDir(t *testing.T) {
	t.Cleanup(func() { _, _ = Init(Options{}) })

	dir := t.TempDir()
	stale := filepath.Join(dir, logPrefix+"2001-01-01"+logSuffix)
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(stale, nil, 0o644))
	require.NoError(t, os.WriteFile(other, nil, 0o644))

	closeFn, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)
	Error("boom")
	require.NoError(t, closeFn())

	assert.NoFileExists(t, stale)
	assert.FileExists(t, other)

	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=boom")
}

package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("run_id", "abc"))

	log.Warn("fetch failed", String("phase", "early"), Int("attempt", 2), Err(errors.New("boom")), Duration("wait", time.Second))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, "fetch failed", m["message"])
	assert.Equal(t, "abc", m["run_id"])
	assert.Equal(t, "early", m["phase"])
	assert.EqualValues(t, 2, m["attempt"])
	assert.Equal(t, "boom", m["err"])
	assert.Contains(t, m["caller"], "logging_test.go:")
}

func TestWriterLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")

	log.Info("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, log.Enabled(LevelInfo))
	assert.True(t, log.Enabled(LevelError))
}

func TestConsoleLoggerLevel(t *testing.T) {
	log := NewConsole("warn")
	assert.False(t, log.IsZero())
	assert.False(t, log.Enabled(LevelInfo))
	assert.True(t, log.Enabled(LevelError))

	assert.True(t, NewConsole("bogus").Enabled(LevelInfo))
}

func TestZeroLoggerIsNop(t *testing.T) {
	var log Logger
	assert.True(t, log.IsZero())
	log.Error("nothing happens")
	assert.False(t, Nop().IsZero())
}

func TestServiceFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawwatch.log")
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	t.Cleanup(func() { _ = svc.Close() })

	log.Info("hello", String("k", "v"))
	require.NoError(t, svc.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"hello"`)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelWarn, parseLevel(" warning ", LevelInfo))
	assert.Equal(t, LevelInfo, parseLevel("bogus", LevelInfo))
	assert.Equal(t, LevelTrace, parseLevel("TRACE", LevelInfo))
}

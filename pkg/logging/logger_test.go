package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json").WithTree("quad").WithDimensions(2)

	l.LogInsert(context.Background(), "(1, 2)", 7, nil)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "insert completed", rec["msg"])
	assert.Equal(t, "quad", rec["tree"])
	assert.Equal(t, float64(2), rec["dims"])
	assert.Equal(t, "(1, 2)", rec["key"])
	assert.Equal(t, float64(7), rec["size"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "text")

	l.LogSplit(context.Background(), "(0, 0)", 1)
	l.LogClear(context.Background(), 3)
	assert.Empty(t, buf.String())

	l.LogConflict(context.Background(), errors.New("boom"))
	assert.Contains(t, buf.String(), "traversal aborted")
	assert.Contains(t, buf.String(), "boom")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.LogBuild(context.Background(), 10, 5, false, errors.New("ignored"))
}

package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xdiag/pkg/context/xctx"
)

func buildJSON(t *testing.T, level Level) (LoggerWithLevel, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, cleanup, err := New().SetOutput(&buf).SetFormat("json").SetLevel(level).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestBuilder_Levels(t *testing.T) {
	logger, buf := buildJSON(t, LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "d")
	logger.Info(ctx, "i")
	logger.Warn(ctx, "w")
	logger.Error(ctx, "e", Err(errors.New("boom")))

	records := decode(t, buf)
	require.Len(t, records, 2)
	assert.Equal(t, "w", records[0]["msg"])
	assert.Equal(t, "e", records[1]["msg"])
	assert.Equal(t, "boom", records[1][KeyError])

	assert.Equal(t, LevelWarn, logger.GetLevel())
	assert.False(t, logger.Enabled(ctx, LevelInfo))
	logger.SetLevel(LevelDebug)
	assert.True(t, logger.Enabled(ctx, LevelDebug))
}

func TestBuilder_Errors(t *testing.T) {
	_, _, err := New().SetFormat("xml").Build()
	assert.Error(t, err)

	_, _, err = New().SetLevelString("loud").Build()
	assert.Error(t, err)

	_, _, err = New().SetRotation(" ", Rotation{}).Build()
	assert.ErrorIs(t, err, ErrEmptyFilename)

	logger, _, err := New().SetFormat("").SetLevelString("debug").Build()
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, logger.GetLevel())
}

func TestEnrich(t *testing.T) {
	logger, buf := buildJSON(t, LevelInfo)

	ctx, err := xctx.WithDiagRequestID(context.Background(), "req-7")
	require.NoError(t, err)
	ctx, _ = xctx.WithDiagPolicy(ctx, "On")

	logger.With(Component("xreqctx")).Info(ctx, "policy narrowed", slog.String(KeyPolicy, "Off"))

	records := decode(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "req-7", records[0][xctx.KeyDiagRequestID])
	assert.Equal(t, "On", records[0][xctx.KeyDiagPolicy])
	assert.Equal(t, "xreqctx", records[0][KeyComponent])
	assert.Equal(t, "Off", records[0][KeyPolicy])
}

func TestEnrich_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New().SetOutput(&buf).SetFormat("json").SetEnrich(false).Build()
	require.NoError(t, err)

	ctx, _ := xctx.WithDiagRequestID(context.Background(), "req-7")
	logger.Info(ctx, "x")
	assert.NotContains(t, buf.String(), "req-7")
}

func TestNewEnrichHandler_Nil(t *testing.T) {
	_, err := NewEnrichHandler(nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestOnError(t *testing.T) {
	var got []error
	logger, _, err := New().SetOutput(failingWriter{}).SetOnError(func(err error) {
		got = append(got, err)
		panic("callback broken")
	}).Build()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		logger.Info(context.Background(), "x")
	})
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), ErrorCount(logger))
	assert.Zero(t, ErrorCount(Discard()))
}

func TestNilContext(t *testing.T) {
	logger, buf := buildJSON(t, LevelInfo)
	var nilCtx context.Context
	assert.NotPanics(t, func() { logger.Info(nilCtx, "x") })
	assert.Len(t, decode(t, buf), 1)
	assert.True(t, logger.Enabled(nilCtx, LevelInfo))
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "xdiag.log")
	logger, cleanup, err := New().SetRotation(path, Rotation{MaxSizeMB: 1}).Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "rotated")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotated")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() {
		l.Debug(context.Background(), "x")
		l.With(slog.Int("n", 1)).Error(context.Background(), "y")
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"Error":   LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("warn")))
	assert.Equal(t, LevelWarn, l)
	text, err := l.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "WARN", string(text))
	assert.Error(t, l.UnmarshalText([]byte("?")))
}

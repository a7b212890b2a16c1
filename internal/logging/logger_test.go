package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	debug := New("debug")
	require.True(t, debug.Handler().Enabled(ctx, slog.LevelDebug))

	warn := New("warn")
	require.False(t, warn.Handler().Enabled(ctx, slog.LevelInfo))
	require.True(t, warn.Handler().Enabled(ctx, slog.LevelWarn))

	// unknown level falls back to info
	fallback := New("verbose")
	require.False(t, fallback.Handler().Enabled(ctx, slog.LevelDebug))
	require.True(t, fallback.Handler().Enabled(ctx, slog.LevelInfo))
}

func TestConsoleHandlerFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, slog.LevelInfo))

	logger.Info("confirmed recurring pattern", "template", "tpl-1", "linked", 6)

	line := buf.String()
	require.Contains(t, line, "[INFO]")
	require.Contains(t, line, "confirmed recurring pattern")
	require.Contains(t, line, "template=tpl-1")
	require.Contains(t, line, "linked=6")
	// a buffer is not a terminal, so no escape codes
	require.NotContains(t, line, "\033[")
}

func TestConsoleHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, slog.LevelInfo)).With("account", "acct-1")

	logger.Warn("skipping template with invalid frequency", "template", "tpl-bad")

	line := buf.String()
	require.Contains(t, line, "[WARN]")
	require.Contains(t, line, "account=acct-1")
	require.Contains(t, line, "template=tpl-bad")

	// debug is below the handler level
	logger.Debug("noise")
	require.Equal(t, line, buf.String())
}

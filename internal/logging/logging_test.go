package logging

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestErrTruncatesLongMessages(t *testing.T) {
	attr := Err(errors.New(strings.Repeat("x", 500)))

	assert.Equal(t, "error", attr.Key)
	assert.Len(t, attr.Value.String(), maxErrorLen+3)
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "", Err(nil).Value.String())
}

func TestNewWithLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger, cleanup, err := New("debug", filepath.Join(t.TempDir(), "menumate.log"))
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

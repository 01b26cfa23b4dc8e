package logx

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryAndLevelInLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	Warn("LEDGER", "withdraw rejected ", "alice")
	line := buf.String()
	assert.Contains(t, line, "[WARN][LEDGER]")
	assert.Contains(t, line, "withdraw rejected alice")
}

func TestErrorfReturnsWrappedError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	base := errors.New("disk full")
	err := Errorf("commit failed: %w", base)
	assert.True(t, errors.Is(err, base))
	assert.Contains(t, buf.String(), "commit failed: disk full")
}

func TestEnvIntFallback(t *testing.T) {
	t.Setenv("LOGFILE_MAX_SIZE_MB", "not-a-number")
	assert.Equal(t, defaultMaxSizeMB, envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB))

	t.Setenv("LOGFILE_MAX_SIZE_MB", "12")
	assert.Equal(t, 12, envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB))
}

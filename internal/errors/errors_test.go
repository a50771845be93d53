package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorChain(t *testing.T) {
	appErr := NewIOError(ErrCodeFileNotFound, "File does not exist", io.ErrUnexpectedEOF).
		WithContext("filename", "cv.pdf")
	wrapped := fmt.Errorf("rank: %w", appErr)

	assert.Equal(t, "FILE_NOT_FOUND: File does not exist (caused by: unexpected EOF)", appErr.Error())
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "cv.pdf", got.Context["filename"])
	assert.True(t, IsType(wrapped, ErrorTypeIO))
	assert.False(t, IsType(wrapped, ErrorTypeValidation))
	assert.False(t, IsType(io.EOF, ErrorTypeIO))
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	logger.LogError(NewAIError(ErrCodeAIServiceFailed, "Gemini call failed", io.EOF).WithContext("operation", "advice"),
		"Advice failed", "role", "Chef")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Advice failed", entry["msg"])
	assert.Equal(t, "ai", entry["error_type"])
	assert.Equal(t, ErrCodeAIServiceFailed, entry["error_code"])
	assert.Equal(t, "EOF", entry["cause"])
	assert.Equal(t, "advice", entry["operation"])
	assert.Equal(t, "Chef", entry["role"])
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		_, err := New(level)
		assert.NoError(t, err, level)
	}
	_, err := New("verbose")
	assert.Error(t, err)
}

package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, level)

	level, err = ParseLevel(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestDefaultLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLoggerWithWriter(&buf)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(DebugLevel)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "[DEBUG] shown")
}

func TestDefaultLoggerFieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLoggerWithWriter(&buf).WithFields(Fields{"component": "search"})

	logger.Info("done", Fields{"boundary": 15, "alpha": "x"})
	assert.Equal(t, "[INFO] done alpha=x boundary=15 component=search\n", buf.String())
}

func TestDefaultLoggerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLoggerWithWriter(&buf)

	logger.Error(errors.New("boom"), "scoring failed")
	assert.Equal(t, "[ERROR] scoring failed: boom\n", buf.String())
}

func TestChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewDefaultLoggerWithWriter(&buf)
	child := root.WithFields(Fields{"component": "timeline"})

	root.SetLevel(WarnLevel)
	child.Info("quiet")
	assert.Empty(t, buf.String())
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLoggerWithWriter(&buf)

	ctx := ContextWithFields(context.Background(), Fields{"request": "abc"})
	logger.WithContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request=abc")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	previous := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(previous) })

	SetGlobalLogger(nil)
	assert.IsType(t, &NoOpLogger{}, GetGlobalLogger())
}

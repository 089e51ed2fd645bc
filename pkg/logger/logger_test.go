package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	original := Level()
	t.Cleanup(func() { level.SetLevel(original) })

	assert.True(t, SetLevel("warn"))
	assert.Equal(t, zapcore.WarnLevel, Level())

	assert.False(t, SetLevel("loud"))
	assert.Equal(t, zapcore.WarnLevel, Level())
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	assert.NotPanics(t, func() { Log.Info("no-op before init") })
}

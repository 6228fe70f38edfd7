package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelDebug < LevelTrace)
	assert.True(t, LevelTrace < LevelInfo)
	assert.True(t, LevelInfo < LevelSuccess)
	assert.True(t, LevelSuccess < LevelWarning)
	assert.True(t, LevelWarning < LevelError)
	assert.True(t, LevelError < LevelException)
	assert.True(t, LevelException < LevelFatal)
}

func TestLevel_Clamp(t *testing.T) {
	assert.Equal(t, LevelDebug, Level(-5).Clamp())
	assert.Equal(t, LevelFatal, Level(99).Clamp())
	assert.Equal(t, LevelWarning, LevelWarning.Clamp())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "fatal", LevelFatal.String())
	assert.Equal(t, "debug", Level(-1).String())
	assert.Equal(t, "fatal", Level(42).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"trace", LevelTrace},
		{"info", LevelInfo},
		{"success", LevelSuccess},
		{"warning", LevelWarning},
		{"warn", LevelWarning},
		{"WARNING", LevelWarning},
		{" error ", LevelError},
		{"err", LevelError},
		{"exception", LevelException},
		{"fatal", LevelFatal},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown name", func(t *testing.T) {
		got, err := ParseLevel("verbose")
		require.Error(t, err)
		assert.Equal(t, DefaultLevel, got)
	})
}

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorForLevel(t *testing.T) {
	assert.Equal(t, ColorRed, ColorForLevel(LevelError))
	assert.Equal(t, ColorNone, ColorForLevel(LevelInfo))
	assert.Equal(t, ColorRedBold, ColorForLevel(Level(99)))
	assert.Equal(t, ColorCyanBold, ColorForLevel(Level(-1)))
}

func TestColor_NoneIsTransparent(t *testing.T) {
	assert.Empty(t, ColorNone.start())
	assert.Empty(t, ColorNone.end())
}

func TestColor_WrapsWithReset(t *testing.T) {
	assert.NotEmpty(t, ColorRed.start())
	assert.Equal(t, ansiReset, ColorRed.end())
}

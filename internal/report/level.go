package report

import (
	"fmt"
	"strings"
)

// Level ranks the severity of a message. Higher values are more severe;
// gating compares levels with >= only, nothing else.
type Level int

const (
	LevelDebug Level = iota
	LevelTrace
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
	LevelException
	LevelFatal

	levelCount = int(LevelFatal) + 1
)

// DefaultLevel is the threshold applied to nodes created without an
// explicit level.
const DefaultLevel = LevelInfo

var levelNames = [levelCount]string{
	"debug",
	"trace",
	"info",
	"success",
	"warning",
	"error",
	"exception",
	"fatal",
}

// Clamp pins the level to the defined range so an ad-hoc integer level
// still selects a valid template and color entry.
func (l Level) Clamp() Level {
	if l < LevelDebug {
		return LevelDebug
	}
	if l > LevelFatal {
		return LevelFatal
	}
	return l
}

func (l Level) String() string {
	return levelNames[l.Clamp()]
}

// ParseLevel resolves a level name such as "warning" or "error". The
// aliases "warn" and "err" are accepted.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	case "info":
		return LevelInfo, nil
	case "success":
		return LevelSuccess, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "err", "error":
		return LevelError, nil
	case "exception":
		return LevelException, nil
	case "fatal":
		return LevelFatal, nil
	}
	return DefaultLevel, fmt.Errorf("reporter: unknown level %q", name)
}

package report

// Color selects an ANSI rendition for terminal sinks.
type Color int

const (
	ColorNone Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorYellow
	ColorLightGray
	ColorDarkGray
	ColorBlackBold
	ColorRedBold
	ColorGreenBold
	ColorBlueBold
	ColorMagentaBold
	ColorCyanBold
	ColorYellowBold
)

var ansiByColor = map[Color]string{
	ColorBlack:       "\x1b[0m\x1b[00;30m",
	ColorRed:         "\x1b[0m\x1b[00;31m",
	ColorGreen:       "\x1b[0m\x1b[00;32m",
	ColorYellow:      "\x1b[0m\x1b[00;33m",
	ColorBlue:        "\x1b[0m\x1b[00;34m",
	ColorMagenta:     "\x1b[0m\x1b[00;35m",
	ColorCyan:        "\x1b[0m\x1b[00;36m",
	ColorLightGray:   "\x1b[0m\x1b[00;37m",
	ColorDarkGray:    "\x1b[0m\x1b[01;30m",
	ColorBlackBold:   "\x1b[0m\x1b[01;30m",
	ColorRedBold:     "\x1b[0m\x1b[01;31m",
	ColorGreenBold:   "\x1b[0m\x1b[01;32m",
	ColorYellowBold:  "\x1b[0m\x1b[01;33m",
	ColorBlueBold:    "\x1b[0m\x1b[01;34m",
	ColorMagentaBold: "\x1b[0m\x1b[01;35m",
	ColorCyanBold:    "\x1b[0m\x1b[01;36m",
}

const ansiReset = "\x1b[0m"

// colorByLevel is the default terminal palette, one entry per level.
var colorByLevel = [levelCount]Color{
	ColorCyanBold,
	ColorLightGray,
	ColorNone,
	ColorGreenBold,
	ColorYellow,
	ColorRed,
	ColorMagentaBold,
	ColorRedBold,
}

// ColorForLevel returns the default terminal color for a level, clamping
// out-of-range values.
func ColorForLevel(level Level) Color {
	return colorByLevel[level.Clamp()]
}

func (c Color) start() string {
	return ansiByColor[c]
}

func (c Color) end() string {
	if c == ColorNone {
		return ""
	}
	return ansiReset
}

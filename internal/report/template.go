package report

import (
	"fmt"
	"time"
)

// TimestampLayout is the wall-clock layout rendered into the timestamp slot.
const TimestampLayout = "2006-01-02T15:04:05"

// Template maps each severity level to a format entry. Entries are fmt
// patterns with four positional slots: %[1]s timestamp, %[2]s code,
// %[3]s component, %[4]s message. The table always holds one entry per
// defined level; rendering clamps out-of-range levels to the nearest bound.
type Template [levelCount]string

// TemplateDefault prefixes each line with a severity marker and separates
// the timestamp, code, component, and message fields.
var TemplateDefault = Template{
	"▶▶▶ %[1]s│%[2]s│%[3]s│%[4]s",
	"─── %[1]s│%[2]s│%[3]s│%[4]s",
	" ┈  %[1]s│%[2]s│%[3]s│%[4]s",
	" ✔  %[1]s│%[2]s│%[3]s│%[4]s",
	"WRN %[1]s│%[2]s│%[3]s│%[4]s",
	"ERR %[1]s│%[2]s│%[3]s│%[4]s",
	" ⚡ %[1]s│%[2]s│%[3]s│%[4]s",
	"!!! %[1]s│%[2]s│%[3]s│%[4]s",
}

// TemplateCompact drops everything but the message.
var TemplateCompact = Template{
	"%[4]s",
	"%[4]s",
	"%[4]s",
	"✔ %[4]s",
	"❗ %[4]s",
	"✘ %[4]s",
	"⚡ %[4]s",
	"✋ %[4]s",
}

// TemplateCommand renders a severity glyph and the message, suited to
// command-line progress output.
var TemplateCommand = Template{
	"▶▶▶ %[4]s",
	"─── %[4]s",
	"    %[4]s",
	" ✔  %[4]s",
	" !  %[4]s",
	"[!] %[4]s",
	" ⚡ %[4]s",
	"!!! %[4]s",
}

// Render formats the envelope through the entry for its level. The message
// text is substituted verbatim.
func (t Template) Render(env Envelope) string {
	entry := t[env.Level.Clamp()]
	return fmt.Sprintf(entry,
		env.Timestamp.Format(TimestampLayout),
		env.Code,
		env.Component,
		env.Message,
	)
}

// RenderAt renders the envelope as if it carried the given level. Used by
// the relay replay path, where the stored level accompanies pre-rendered
// text.
func (t Template) RenderAt(level Level, env Envelope) string {
	env.Level = level
	if env.Timestamp.IsZero() {
		env.Timestamp = time.Now()
	}
	return t.Render(env)
}

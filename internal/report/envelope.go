package report

import "time"

// Placeholder substitutes an empty component or code when rendering.
const Placeholder = "-"

// Envelope is the structured record of one reportable event. It is built
// once per emission call, passed through the fan-out tree by value, and
// never mutated after construction.
type Envelope struct {
	Level     Level
	Component string
	Code      string
	Message   string
	Timestamp time.Time
}

// NewEnvelope stamps the current time and fills the component and code
// placeholders.
func NewEnvelope(level Level, message, component, code string) Envelope {
	if component == "" {
		component = Placeholder
	}
	if code == "" {
		code = Placeholder
	}
	return Envelope{
		Level:     level,
		Component: component,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	errspkg "github.com/reporterhq/reporter/internal/errors"
)

// WriterSink renders envelopes with its own template and writes one line
// per envelope to an io.Writer. Writes are serialized by a mutex so a
// sink shared between goroutines does not interleave lines.
type WriterSink struct {
	mu       sync.Mutex
	key      string
	w        io.Writer
	level    Level
	template Template
	color    bool
}

// WriterSinkConfig configures a WriterSink. Writer is required; a zero
// Template falls back to TemplateDefault and an empty Key to "writer".
type WriterSinkConfig struct {
	Key      string
	Writer   io.Writer
	Level    Level
	Template Template
	Color    bool
}

// NewWriterSink builds a sink for the given writer.
func NewWriterSink(cfg WriterSinkConfig) *WriterSink {
	if cfg.Key == "" {
		cfg.Key = "writer"
	}
	if cfg.Template == (Template{}) {
		cfg.Template = TemplateDefault
	}
	return &WriterSink{
		key:      cfg.Key,
		w:        cfg.Writer,
		level:    cfg.Level,
		template: cfg.Template,
		color:    cfg.Color,
	}
}

// NewConsoleSink returns a colored sink on stdout.
func NewConsoleSink() *WriterSink {
	return NewWriterSink(WriterSinkConfig{Key: "console", Writer: os.Stdout, Color: true})
}

// NewStderrSink returns a colored sink on stderr.
func NewStderrSink() *WriterSink {
	return NewWriterSink(WriterSinkConfig{Key: "stderr", Writer: os.Stderr, Color: true})
}

func (s *WriterSink) Key() string {
	return s.key
}

// SetLevel lets the sink participate in threshold cascades.
func (s *WriterSink) SetLevel(level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
}

func (s *WriterSink) Send(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if env.Level < s.level {
		return nil
	}

	line := sanitize(s.template.Render(env))
	if s.color {
		c := ColorForLevel(env.Level)
		line = c.start() + line + c.end()
	}
	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return fmt.Errorf("write report line: %w", err)
	}
	return nil
}

// FileSink appends rendered lines to a path, opening and closing the file
// per send so the path can be rotated or be a named pipe. Constructing it
// with both a path and a writer is a configuration error; with a writer it
// behaves like WriterSink but flushes if the writer supports it.
type FileSink struct {
	mu       sync.Mutex
	key      string
	path     string
	w        io.Writer
	level    Level
	template Template
}

// FileSinkConfig configures a FileSink. Exactly one of Path and Writer
// must be set.
type FileSinkConfig struct {
	Key      string
	Path     string
	Writer   io.Writer
	Level    Level
	Template Template
}

// NewFileSink validates the configuration and builds the sink.
func NewFileSink(cfg FileSinkConfig) (*FileSink, error) {
	if cfg.Path != "" && cfg.Writer != nil {
		return nil, errspkg.ErrPathAndWriter
	}
	if cfg.Path == "" && cfg.Writer == nil {
		return nil, fmt.Errorf("%w: a path or a writer is required", errspkg.ErrPathAndWriter)
	}
	if cfg.Key == "" {
		cfg.Key = "file"
	}
	if cfg.Template == (Template{}) {
		cfg.Template = TemplateDefault
	}
	return &FileSink{
		key:      cfg.Key,
		path:     cfg.Path,
		w:        cfg.Writer,
		level:    cfg.Level,
		template: cfg.Template,
	}, nil
}

func (s *FileSink) Key() string {
	return s.key
}

// SetLevel lets the sink participate in threshold cascades.
func (s *FileSink) SetLevel(level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
}

func (s *FileSink) Send(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if env.Level < s.level {
		return nil
	}

	line := sanitize(s.template.Render(env)) + "\n"

	if s.w != nil {
		if _, err := io.WriteString(s.w, line); err != nil {
			return fmt.Errorf("write report line: %w", err)
		}
		if f, ok := s.w.(interface{ Sync() error }); ok {
			_ = f.Sync()
		}
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	_, werr := io.WriteString(f, line)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("write report file: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("close report file: %w", cerr)
	}
	return nil
}

// sanitize replaces invalid UTF-8 so a sink never propagates an encoding
// failure for message bytes it did not produce.
func sanitize(s string) string {
	return strings.ToValidUTF8(s, "�")
}

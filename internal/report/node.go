package report

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	errspkg "github.com/reporterhq/reporter/internal/errors"
	idspkg "github.com/reporterhq/reporter/internal/ids"
	loggingpkg "github.com/reporterhq/reporter/internal/logging"
)

// Sink receives envelopes broadcast by a Node. Terminal sinks render the
// envelope with their own template; a Node used as a sink forwards it to
// its children unchanged.
type Sink interface {
	// Key identifies the sink inside a parent's child list. Registration
	// dedups by key, so two sinks meant to coexist need distinct keys.
	Key() string
	Send(env Envelope) error
}

// LevelSetter is implemented by sinks whose threshold can be cascaded by
// Node.SetLevel.
type LevelSetter interface {
	SetLevel(level Level)
}

// Node is the fan-out dispatcher. It gates each emission call against its
// threshold, builds the envelope, and broadcasts it to every registered
// child in registration order. Registration mutations and fan-out iterate
// under a per-node mutex, so a shared node is safe for concurrent callers.
type Node struct {
	mu       sync.Mutex
	key      string
	level    Level
	template Template
	children []Sink
	logger   loggingpkg.ServiceLogger
}

// NewNode returns a node with the default threshold and template and a
// generated key. Supply a caller-chosen key with SetKey when the node is
// registered somewhere that dedups.
func NewNode() *Node {
	return &Node{
		key:      "node-" + idspkg.CreateULID(),
		level:    DefaultLevel,
		template: TemplateDefault,
	}
}

// Key implements Sink.
func (n *Node) Key() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.key
}

// SetKey overrides the node's registration key.
func (n *Node) SetKey(key string) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.key = key
	return n
}

// Level returns the current threshold.
func (n *Node) Level() Level {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.level
}

// SetLevel sets the threshold and cascades it once into every current
// child that can take one. Children registered later keep their own
// threshold until the cascade runs again.
func (n *Node) SetLevel(level Level) {
	n.mu.Lock()
	n.level = level
	children := slices.Clone(n.children)
	n.mu.Unlock()

	for _, child := range children {
		if setter, ok := child.(LevelSetter); ok {
			setter.SetLevel(level)
		}
	}
}

// Template returns the node's template table.
func (n *Node) Template() Template {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.template
}

// SetTemplate swaps the template table used when the node itself renders.
func (n *Node) SetTemplate(t Template) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.template = t
	return n
}

// SetLogger attaches a logger for reporting fan-out failures. Without one
// the aggregated error is still returned by Dispatch but emission calls
// stay silent.
func (n *Node) SetLogger(log loggingpkg.ServiceLogger) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logger = log
	return n
}

// Register appends the sinks in call order. A sink whose key is already
// present among the children is skipped, so repeated registration is a
// no-op.
func (n *Node) Register(sinks ...Sink) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sink := range sinks {
		if sink == nil || n.indexOfLocked(sink.Key()) >= 0 {
			continue
		}
		n.children = append(n.children, sink)
	}
}

// Unregister removes the sinks from the child list. Removing a sink that
// is not registered is a precondition failure.
func (n *Node) Unregister(sinks ...Sink) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sink := range sinks {
		if sink == nil {
			return errspkg.ErrSinkRequired
		}
		i := n.indexOfLocked(sink.Key())
		if i < 0 {
			return fmt.Errorf("%w: %s", errspkg.ErrNotRegistered, sink.Key())
		}
		n.children = slices.Delete(n.children, i, i+1)
	}
	return nil
}

// Children returns a snapshot of the registered sinks in order.
func (n *Node) Children() []Sink {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.children)
}

func (n *Node) indexOfLocked(key string) int {
	return slices.IndexFunc(n.children, func(s Sink) bool {
		return s.Key() == key
	})
}

// Debug reports at the debug level and returns the message unchanged.
func (n *Node) Debug(message, component string, code ...string) string {
	return n.emit(LevelDebug, message, component, code)
}

// Trace reports at the trace level and returns the message unchanged.
func (n *Node) Trace(message, component string, code ...string) string {
	return n.emit(LevelTrace, message, component, code)
}

// Info reports at the info level and returns the message unchanged.
func (n *Node) Info(message, component string, code ...string) string {
	return n.emit(LevelInfo, message, component, code)
}

// Success reports at the success level and returns the message unchanged.
func (n *Node) Success(message, component string, code ...string) string {
	return n.emit(LevelSuccess, message, component, code)
}

// Warn is an alias for Warning.
func (n *Node) Warn(message, component string, code ...string) string {
	return n.Warning(message, component, code...)
}

// Warning reports at the warning level and returns the message unchanged.
func (n *Node) Warning(message, component string, code ...string) string {
	return n.emit(LevelWarning, message, component, code)
}

// Error reports at the error level and returns the message unchanged.
func (n *Node) Error(message, component string, code ...string) string {
	return n.emit(LevelError, message, component, code)
}

// Exception reports at the exception level and returns the message unchanged.
func (n *Node) Exception(message, component string, code ...string) string {
	return n.emit(LevelException, message, component, code)
}

// Fatal reports at the fatal level and returns the message unchanged.
func (n *Node) Fatal(message, component string, code ...string) string {
	return n.emit(LevelFatal, message, component, code)
}

// emit gates the call, builds the envelope, and dispatches it. The caller
// always gets the original message text back so emission calls compose as
// pass-through formatters.
func (n *Node) emit(level Level, message, component string, code []string) string {
	n.mu.Lock()
	threshold := n.level
	logger := n.logger
	n.mu.Unlock()

	if level < threshold {
		return message
	}

	var c string
	if len(code) > 0 {
		c = code[0]
	}
	env := NewEnvelope(level, message, component, c)
	if err := n.Dispatch(env); err != nil && logger != nil {
		logger.Error("reporter fan-out failed", err, loggingpkg.LogFields{
			"level":     level.String(),
			"component": env.Component,
		})
	}
	return message
}

// Dispatch broadcasts the envelope to every child without consulting the
// threshold. The relay worker replays stored jobs through this path so a
// job is forwarded at exactly its recorded level.
//
// A failing child never aborts its siblings; per-child errors are
// collected and returned joined.
func (n *Node) Dispatch(env Envelope) error {
	n.mu.Lock()
	children := slices.Clone(n.children)
	n.mu.Unlock()

	var errs []error
	for _, child := range children {
		if err := child.Send(env); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", child.Key(), err))
		}
	}
	return errors.Join(errs...)
}

// Send implements Sink so nodes nest as subtrees. The envelope is
// forwarded as-is; gating happened once at the emitting node.
func (n *Node) Send(env Envelope) error {
	return n.Dispatch(env)
}

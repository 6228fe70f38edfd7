package reporter

import (
	"sync"

	reportpkg "github.com/reporterhq/reporter/internal/report"
)

var (
	defaultOnce sync.Once
	defaultNode *Node
)

// Default returns the process-wide root node, created on first use with
// a console sink attached. Libraries should prefer an explicit Node;
// the shared root exists for applications that just want to report.
func Default() *Node {
	defaultOnce.Do(func() {
		defaultNode = reportpkg.NewNode().SetKey("root")
		defaultNode.Register(reportpkg.NewConsoleSink())
	})
	return defaultNode
}

// Register attaches sinks to the default node.
func Register(sinks ...Sink) { Default().Register(sinks...) }

// Unregister detaches sinks from the default node.
func Unregister(sinks ...Sink) error { return Default().Unregister(sinks...) }

// SetLevel sets the default node's threshold and cascades it to its
// current children.
func SetLevel(level Level) { Default().SetLevel(level) }

// Debug reports through the default node at LevelDebug.
func Debug(message, component string, code ...string) string {
	return Default().Debug(message, component, code...)
}

// Trace reports through the default node at LevelTrace.
func Trace(message, component string, code ...string) string {
	return Default().Trace(message, component, code...)
}

// Info reports through the default node at LevelInfo.
func Info(message, component string, code ...string) string {
	return Default().Info(message, component, code...)
}

// Success reports through the default node at LevelSuccess.
func Success(message, component string, code ...string) string {
	return Default().Success(message, component, code...)
}

// Warn reports through the default node at LevelWarning.
func Warn(message, component string, code ...string) string {
	return Default().Warn(message, component, code...)
}

// Warning is an alias for Warn.
func Warning(message, component string, code ...string) string {
	return Default().Warning(message, component, code...)
}

// Error reports through the default node at LevelError.
func Error(message, component string, code ...string) string {
	return Default().Error(message, component, code...)
}

// Exception reports through the default node at LevelException.
func Exception(message, component string, code ...string) string {
	return Default().Exception(message, component, code...)
}

// Fatal reports through the default node at LevelFatal. It does not
// exit the process.
func Fatal(message, component string, code ...string) string {
	return Default().Fatal(message, component, code...)
}

// Bound reports through a fixed node with a fixed component, so call
// sites inside one subsystem don't repeat themselves.
type Bound struct {
	node      *Node
	component string
}

// Bind fixes the component for reports sent through the default node.
func Bind(component string) *Bound {
	return BindTo(Default(), component)
}

// BindTo fixes the component for reports sent through the given node.
func BindTo(node *Node, component string) *Bound {
	if component == "" {
		component = Placeholder
	}
	return &Bound{node: node, component: component}
}

// Component returns the bound component name.
func (b *Bound) Component() string { return b.component }

func (b *Bound) Debug(message string, code ...string) string {
	return b.node.Debug(message, b.component, code...)
}

func (b *Bound) Trace(message string, code ...string) string {
	return b.node.Trace(message, b.component, code...)
}

func (b *Bound) Info(message string, code ...string) string {
	return b.node.Info(message, b.component, code...)
}

func (b *Bound) Success(message string, code ...string) string {
	return b.node.Success(message, b.component, code...)
}

func (b *Bound) Warn(message string, code ...string) string {
	return b.node.Warn(message, b.component, code...)
}

func (b *Bound) Warning(message string, code ...string) string {
	return b.node.Warning(message, b.component, code...)
}

func (b *Bound) Error(message string, code ...string) string {
	return b.node.Error(message, b.component, code...)
}

func (b *Bound) Exception(message string, code ...string) string {
	return b.node.Exception(message, b.component, code...)
}

func (b *Bound) Fatal(message string, code ...string) string {
	return b.node.Fatal(message, b.component, code...)
}

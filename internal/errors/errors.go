package errors

import sterrors "errors"

var (
	ErrNotRegistered     = sterrors.New("reporter: sink is not registered as a delegate")
	ErrSinkRequired      = sterrors.New("reporter: sink is required")
	ErrNodeRequired      = sterrors.New("reporter: node is required")
	ErrTopicRequired     = sterrors.New("reporter: topic is required")
	ErrPublisherRequired = sterrors.New("reporter: publisher is required")
	ErrConfigRequired    = sterrors.New("reporter: config is required")
	ErrLoggerRequired    = sterrors.New("reporter: logger is required")
	ErrWorkerStopped     = sterrors.New("reporter: worker is stopped")

	// ErrPathAndWriter flags a file sink constructed with both a path and
	// an open writer. One of the two must be chosen.
	ErrPathAndWriter = sterrors.New("reporter: file sink takes a path or a writer, not both")

	// ErrProducerDisabled marks a relay producer whose broker connection
	// could not be established. Sends degrade to local warnings.
	ErrProducerDisabled = sterrors.New("reporter: relay producer is disabled, broker unreachable")
)

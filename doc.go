// Package reporter is a severity-gated event reporting facility built
// around a fan-out dispatcher tree. A Node holds a threshold and a set
// of child sinks; a report at or above the threshold is wrapped in an
// Envelope and forwarded to every child, which may be a terminal sink
// (console, file, arbitrary writer) or another Node with its own
// threshold and children.
//
// On top of the local tree sits the relay: a Producer sink renders
// envelopes and enqueues them as jobs on a durable message queue, and a
// Worker drains that queue on another process and replays each job
// through a local node. The queue is any of the supported transports
// (Go channels, file-backed I/O, NATS core and JetStream, Kafka,
// RabbitMQ, HTTP, SQLite, AWS SQS), selected through Config and built
// via the transport registry.
//
// # Quick start
//
//	node := reporter.NewNode().SetKey("app")
//	node.Register(reporter.NewConsoleSink())
//	node.SetLevel(reporter.LevelWarning)
//	node.Error("disk almost full", "storage", "E042")
//
// Applications that just want to report can use the package-level
// functions, which go through a shared root node with a console sink,
// or Bind a component once and reuse it:
//
//	log := reporter.Bind("payments")
//	log.Info("settlement batch complete")
//
// # Relay
//
// A producing process registers a Producer as a sink; a consuming
// process runs a Worker over the same transport and topic. Jobs carry
// only the rendered line and the numeric level, so consumers need no
// knowledge of the producer's template or tree shape. Malformed queue
// payloads are acknowledged and discarded rather than poisoning the
// queue; payloads with a foreign type tag are left unacknowledged for
// whichever consumer owns them.
package reporter

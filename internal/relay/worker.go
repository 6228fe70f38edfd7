package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	configpkg "github.com/reporterhq/reporter/internal/config"
	errspkg "github.com/reporterhq/reporter/internal/errors"
	loggingpkg "github.com/reporterhq/reporter/internal/logging"
	metricspkg "github.com/reporterhq/reporter/internal/metrics"
	"github.com/reporterhq/reporter/internal/report"
	transportpkg "github.com/reporterhq/reporter/transport"
)

var routerRun = func(router *message.Router, ctx context.Context) error {
	return router.Run(ctx)
}

// Worker drains the relay topic and replays each job through a local
// dispatcher node. The node's own threshold is not consulted again: the
// producing side already gated the report, so the worker hands the
// envelope straight to the node's children.
//
// Acknowledgement mirrors the job's fate. Replayed and malformed jobs
// are acked (malformed payloads would poison the queue forever
// otherwise), jobs carrying a foreign type tag are nacked and left for
// whichever consumer owns them.
type Worker struct {
	mu      sync.Mutex
	node    *report.Node
	topic   string
	logger  loggingpkg.ServiceLogger
	metrics *metricspkg.RelayMetrics

	router     *message.Router
	subscriber message.Subscriber

	cancel  context.CancelFunc
	running bool
	stopped bool
}

// WorkerOptions tunes the optional collaborators of a Worker.
type WorkerOptions struct {
	// Metrics counts replayed, discarded, and foreign jobs when set.
	Metrics *metricspkg.RelayMetrics

	// Subscriber overrides the transport lookup, mostly for tests.
	Subscriber message.Subscriber

	// CloseTimeout bounds router shutdown. Zero keeps the watermill
	// default.
	CloseTimeout time.Duration
}

// NewWorker builds the broker connection and the watermill router for
// the configured topic. Unlike the producer, a worker without a broker
// is useless, so construction errors are fatal to the caller.
func NewWorker(ctx context.Context, cfg *configpkg.Config, node *report.Node, logger loggingpkg.ServiceLogger, opts WorkerOptions) (*Worker, error) {
	if cfg == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if node == nil {
		return nil, errspkg.ErrNodeRequired
	}
	if logger == nil {
		logger = loggingpkg.Nop()
	}

	topic := cfg.TopicOrDefault()
	w := &Worker{
		node:    node,
		topic:   topic,
		logger:  logger.With(loggingpkg.LogFields{"topic": topic}),
		metrics: opts.Metrics,
	}

	wmLogger := loggingpkg.NewWatermillAdapter(w.logger)

	if opts.Subscriber != nil {
		w.subscriber = opts.Subscriber
	} else {
		tr, err := transportpkg.Build(ctx, cfg, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("build relay worker transport: %w", err)
		}
		w.subscriber = tr.Subscriber
	}

	routerCfg := message.RouterConfig{CloseTimeout: opts.CloseTimeout}
	router, err := message.NewRouter(routerCfg, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("build relay worker router: %w", err)
	}
	w.router = router

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(w.tracerMiddleware())
	router.AddNoPublisherHandler("relay_worker_"+topic, topic, w.subscriber, w.handleJob)

	return w, nil
}

// Topic returns the queue topic the worker drains.
func (w *Worker) Topic() string {
	return w.topic
}

// Running reports whether the router loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start runs the router until the context is cancelled or Stop is
// called. A stopped worker cannot be restarted.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return errspkg.ErrWorkerStopped
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	err := routerRun(w.router, ctx)

	w.mu.Lock()
	w.running = false
	w.stopped = true
	w.mu.Unlock()
	return err
}

// Stop cancels the router loop and closes the broker connection. Safe
// to call more than once and from any goroutine, including a sink
// firing inside the worker's own dispatch.
func (w *Worker) Stop() error {
	w.mu.Lock()
	w.stopped = true
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return w.router.Close()
}

func (w *Worker) handleJob(msg *message.Message) error {
	job, err := DecodeJob(msg.Payload)
	if err != nil {
		var malformed *MalformedJobError
		if errors.As(err, &malformed) {
			if w.metrics != nil {
				w.metrics.JobsDiscarded.Inc()
			}
			w.logger.Error("discarding malformed relay job", err, loggingpkg.LogFields{
				"message_uuid": msg.UUID,
			})
			return nil
		}
		// Foreign type tag: not ours, leave it on the queue.
		if w.metrics != nil {
			w.metrics.JobsForeign.Inc()
		}
		return err
	}

	env := report.Envelope{
		Level:     report.Level(job.Level).Clamp(),
		Component: report.Placeholder,
		Code:      report.Placeholder,
		Message:   job.Message,
		Timestamp: time.Now(),
	}

	if err := w.node.Dispatch(env); err != nil {
		w.logger.Error("relay dispatch failed for some sinks", err, loggingpkg.LogFields{
			"message_uuid": msg.UUID,
		})
	}
	if w.metrics != nil {
		w.metrics.JobsReplayed.Inc()
	}
	return nil
}

// tracerMiddleware wraps job handling with an OpenTelemetry span.
func (w *Worker) tracerMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			tracer := otel.Tracer("reporter-relay-worker")
			ctx, span := tracer.Start(msg.Context(), "ReplayJob")
			defer span.End()
			msg.SetContext(ctx)

			span.SetAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("relay.topic", w.topic),
			)
			return h(msg)
		}
	}
}

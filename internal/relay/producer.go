package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	configpkg "github.com/reporterhq/reporter/internal/config"
	errspkg "github.com/reporterhq/reporter/internal/errors"
	idspkg "github.com/reporterhq/reporter/internal/ids"
	loggingpkg "github.com/reporterhq/reporter/internal/logging"
	metricspkg "github.com/reporterhq/reporter/internal/metrics"
	"github.com/reporterhq/reporter/internal/report"
	transportpkg "github.com/reporterhq/reporter/transport"
)

// Producer is a terminal sink that renders each envelope and enqueues it
// as a job on the configured topic instead of writing it anywhere
// locally.
//
// A Producer never fails its caller: when the broker is unreachable at
// construction time it comes up disabled, and a disabled or failing
// producer degrades every Send to a local warning. Reporting errors must
// not crash the process that reports them.
type Producer struct {
	mu       sync.Mutex
	key      string
	topic    string
	template report.Template
	logger   loggingpkg.ServiceLogger
	metrics  *metricspkg.RelayMetrics

	publisher message.Publisher
	disabled  bool
}

// ProducerOptions tunes the optional collaborators of a Producer.
type ProducerOptions struct {
	// Key overrides the registration key; defaults to "relay:<topic>".
	Key string

	// Template renders envelopes before they are flattened into jobs.
	// Zero value falls back to TemplateDefault.
	Template report.Template

	// Metrics counts published jobs and publish failures when set.
	Metrics *metricspkg.RelayMetrics

	// Publisher overrides the transport lookup, mostly for tests.
	Publisher message.Publisher
}

// NewProducer builds the broker connection for the configured transport
// and returns the producer sink. The returned error is advisory: the
// producer is usable (in disabled, warn-only mode) even when it is
// non-nil.
func NewProducer(ctx context.Context, cfg *configpkg.Config, logger loggingpkg.ServiceLogger, opts ProducerOptions) (*Producer, error) {
	if logger == nil {
		logger = loggingpkg.Nop()
	}
	if cfg == nil {
		return nil, errspkg.ErrConfigRequired
	}

	topic := cfg.TopicOrDefault()
	p := &Producer{
		key:      opts.Key,
		topic:    topic,
		template: opts.Template,
		logger:   logger.With(loggingpkg.LogFields{"topic": topic}),
		metrics:  opts.Metrics,
	}
	if p.key == "" {
		p.key = "relay:" + topic
	}
	if p.template == (report.Template{}) {
		p.template = report.TemplateDefault
	}

	if opts.Publisher != nil {
		p.publisher = opts.Publisher
		return p, nil
	}

	tr, err := transportpkg.Build(ctx, cfg, loggingpkg.NewWatermillAdapter(logger))
	if err != nil {
		p.disabled = true
		p.logger.Error("relay producer cannot reach broker, sends will be dropped", err, nil)
		return p, fmt.Errorf("%w: %w", errspkg.ErrProducerDisabled, err)
	}

	p.publisher = tr.Publisher
	return p, nil
}

// Key implements report.Sink.
func (p *Producer) Key() string {
	return p.key
}

// Topic returns the queue topic jobs are published on.
func (p *Producer) Topic() string {
	return p.topic
}

// Disabled reports whether the producer lost (or never had) its broker
// connection.
func (p *Producer) Disabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disabled
}

// Send implements report.Sink: render, flatten, enqueue. Broker failures
// surface as local warnings, never as errors to the dispatching node.
func (p *Producer) Send(env report.Envelope) error {
	p.mu.Lock()
	disabled := p.disabled
	p.mu.Unlock()

	if disabled {
		p.logger.Info("relay producer disabled, dropping report", loggingpkg.LogFields{
			"level": env.Level.String(),
		})
		return nil
	}

	job := NewJob(env.Level, p.template.Render(env))
	payload, err := job.Encode()
	if err != nil {
		return fmt.Errorf("encode relay job: %w", err)
	}

	msg := message.NewMessage(idspkg.CreateULID(), payload)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		if p.metrics != nil {
			p.metrics.PublishFailures.Inc()
		}
		p.logger.Error("relay publish failed, dropping report", err, loggingpkg.LogFields{
			"level": env.Level.String(),
		})
		return nil
	}

	if p.metrics != nil {
		p.metrics.JobsPublished.Inc()
	}
	return nil
}

// Close releases the broker connection.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabled = true
	if p.publisher == nil {
		return nil
	}
	return p.publisher.Close()
}

package relay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configpkg "github.com/reporterhq/reporter/internal/config"
	errspkg "github.com/reporterhq/reporter/internal/errors"
	loggingpkg "github.com/reporterhq/reporter/internal/logging"
	metricspkg "github.com/reporterhq/reporter/internal/metrics"
	"github.com/reporterhq/reporter/internal/report"
)

type capturingPublisher struct {
	mu       sync.Mutex
	topic    string
	messages []*message.Message
	err      error
	closed   bool
}

func (p *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.messages = append(p.messages, messages...)
	return nil
}

func (p *capturingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func TestNewProducer_RequiresConfig(t *testing.T) {
	_, err := NewProducer(context.Background(), nil, loggingpkg.Nop(), ProducerOptions{})
	assert.ErrorIs(t, err, errspkg.ErrConfigRequired)
}

func TestProducer_Defaults(t *testing.T) {
	pub := &capturingPublisher{}
	p, err := NewProducer(context.Background(), &configpkg.Config{}, loggingpkg.Nop(), ProducerOptions{Publisher: pub})
	require.NoError(t, err)

	assert.Equal(t, configpkg.DefaultTopic, p.Topic())
	assert.Equal(t, "relay:report", p.Key())
	assert.False(t, p.Disabled())
}

func TestProducer_Send(t *testing.T) {
	pub := &capturingPublisher{}
	p, err := NewProducer(context.Background(), &configpkg.Config{Topic: "reports"}, loggingpkg.Nop(), ProducerOptions{Publisher: pub})
	require.NoError(t, err)

	env := report.NewEnvelope(report.LevelError, "boom", "svc", "E1")
	require.NoError(t, p.Send(env))

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "reports", pub.topic)
	assert.Len(t, pub.messages[0].UUID, 26)

	job, err := DecodeJob(pub.messages[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, JobTypeMessage, job.Type)
	assert.Equal(t, int(report.LevelError), job.Level)
	assert.Contains(t, job.Message, "svc")
	assert.Contains(t, job.Message, "E1")
	assert.Contains(t, job.Message, "boom")
}

func TestProducer_SendUsesConfiguredTemplate(t *testing.T) {
	pub := &capturingPublisher{}
	p, err := NewProducer(context.Background(), &configpkg.Config{}, loggingpkg.Nop(), ProducerOptions{
		Publisher: pub,
		Template:  report.TemplateCompact,
	})
	require.NoError(t, err)

	require.NoError(t, p.Send(report.NewEnvelope(report.LevelInfo, "plain", "svc", "")))

	job, err := DecodeJob(pub.messages[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "plain", job.Message)
}

func TestProducer_PublishFailureIsLocal(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("broker gone")}
	metrics := metricspkg.NewRelayMetrics(nil)
	p, err := NewProducer(context.Background(), &configpkg.Config{}, loggingpkg.Nop(), ProducerOptions{
		Publisher: pub,
		Metrics:   metrics,
	})
	require.NoError(t, err)

	// The dispatching node must never see a broker failure.
	require.NoError(t, p.Send(report.NewEnvelope(report.LevelError, "boom", "svc", "")))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PublishFailures))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.JobsPublished))
}

func TestProducer_CountsPublishedJobs(t *testing.T) {
	pub := &capturingPublisher{}
	metrics := metricspkg.NewRelayMetrics(nil)
	p, err := NewProducer(context.Background(), &configpkg.Config{}, loggingpkg.Nop(), ProducerOptions{
		Publisher: pub,
		Metrics:   metrics,
	})
	require.NoError(t, err)

	require.NoError(t, p.Send(report.NewEnvelope(report.LevelError, "boom", "svc", "")))
	require.NoError(t, p.Send(report.NewEnvelope(report.LevelFatal, "down", "svc", "")))

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.JobsPublished))
}

func TestNewProducer_DisabledOnBrokerFailure(t *testing.T) {
	cfg := &configpkg.Config{Broker: "no-such-broker"}
	p, err := NewProducer(context.Background(), cfg, loggingpkg.Nop(), ProducerOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, errspkg.ErrProducerDisabled)
	require.NotNil(t, p)
	assert.True(t, p.Disabled())

	// Sends degrade to warnings, they never error.
	assert.NoError(t, p.Send(report.NewEnvelope(report.LevelError, "boom", "svc", "")))
}

func TestProducer_IsNodeSink(t *testing.T) {
	pub := &capturingPublisher{}
	p, err := NewProducer(context.Background(), &configpkg.Config{}, loggingpkg.Nop(), ProducerOptions{Publisher: pub})
	require.NoError(t, err)

	node := report.NewNode()
	node.Register(p)
	node.SetLevel(report.LevelWarning)

	node.Info("quiet", "svc")
	node.Error("boom", "svc")

	assert.Len(t, pub.messages, 1)
}

func TestProducer_Close(t *testing.T) {
	pub := &capturingPublisher{}
	p, err := NewProducer(context.Background(), &configpkg.Config{}, loggingpkg.Nop(), ProducerOptions{Publisher: pub})
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, pub.closed)
	assert.True(t, p.Disabled())
}

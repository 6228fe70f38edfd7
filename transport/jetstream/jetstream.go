// Package jetstream provides a NATS JetStream transport for the reporting
// relay. Jobs land on a durable work-queue stream with explicit ack and
// nak, which is the closest match to the single-consumer-per-job broker
// the relay is specified against.
package jetstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"

	"github.com/reporterhq/reporter/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "nats-jetstream"

const (
	// DefaultStreamPrefix prefixes the stream created for each topic.
	DefaultStreamPrefix = "REPORTER"

	// DefaultAckWait is how long the server waits for an ack before
	// redelivering a job.
	DefaultAckWait = 30 * time.Second

	// DefaultFetchTimeout bounds one blocking poll. Stop latency of a
	// subscriber loop is at most this long.
	DefaultFetchTimeout = 2 * time.Second

	metadataHeaderPrefix = "Reporter-Md-"
)

// ConnectFactory allows overriding the NATS connection for testing.
var ConnectFactory = func(url string) (*nats.Conn, error) {
	return nats.Connect(url)
}

// Register registers the JetStream transport with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.NATSJetStreamCapabilities)
}

// Build creates a new JetStream transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	t, err := New(Config{URL: cfg.GetNATSURL()}, logger)
	if err != nil {
		return transport.Transport{}, err
	}

	return transport.Transport{
		Publisher:  t,
		Subscriber: t,
	}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.NATSJetStreamCapabilities
}

// Config holds JetStream-specific configuration.
type Config struct {
	// URL is the NATS server URL.
	URL string

	// StreamPrefix names the streams created per topic. Defaults to
	// DefaultStreamPrefix.
	StreamPrefix string

	// AckWait is the redelivery timeout for unacknowledged jobs.
	AckWait time.Duration

	// FetchTimeout bounds one blocking poll of the pull consumer.
	FetchTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.StreamPrefix == "" {
		c.StreamPrefix = DefaultStreamPrefix
	}
	if c.AckWait <= 0 {
		c.AckWait = DefaultAckWait
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return c
}

// Transport is both publisher and subscriber over one NATS connection.
type Transport struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	cfg    Config
	logger watermill.LoggerAdapter

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	streamsMu sync.Mutex
	streams   map[string]bool
}

// New connects to the NATS server and prepares a JetStream context.
func New(cfg Config, logger watermill.LoggerAdapter) (*Transport, error) {
	cfg = cfg.withDefaults()

	conn, err := ConnectFactory(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open JetStream context: %w", err)
	}

	return &Transport{
		conn:    conn,
		js:      js,
		cfg:     cfg,
		logger:  logger,
		closing: make(chan struct{}),
		streams: make(map[string]bool),
	}, nil
}

// streamName derives a stream name from a topic; JetStream forbids dots
// and spaces in stream names.
func (t *Transport) streamName(topic string) string {
	sanitized := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(topic)
	return t.cfg.StreamPrefix + "_" + strings.ToUpper(sanitized)
}

// ensureStream creates the work-queue stream for a topic if it does not
// exist yet. Work-queue retention removes a job once one consumer acks
// it, exactly the delete-on-ack contract the relay expects.
func (t *Transport) ensureStream(topic string) error {
	t.streamsMu.Lock()
	defer t.streamsMu.Unlock()

	if t.streams[topic] {
		return nil
	}

	name := t.streamName(topic)
	_, err := t.js.StreamInfo(name)
	if err == nil {
		t.streams[topic] = true
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("inspect stream %s: %w", name, err)
	}

	_, err = t.js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  []string{topic},
		Retention: nats.WorkQueuePolicy,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", name, err)
	}

	t.streams[topic] = true
	return nil
}

// Publish sends messages onto the topic's stream.
func (t *Transport) Publish(topic string, messages ...*message.Message) error {
	if err := t.ensureStream(topic); err != nil {
		return err
	}

	for _, msg := range messages {
		m := nats.NewMsg(topic)
		m.Data = msg.Payload
		m.Header.Set("Reporter-Uuid", msg.UUID)
		for k, v := range msg.Metadata {
			m.Header.Set(metadataHeaderPrefix+k, v)
		}

		if _, err := t.js.PublishMsg(m); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
	}
	return nil
}

// Subscribe pulls jobs from the topic's durable consumer. The returned
// channel closes when the context is cancelled or the transport closes.
func (t *Transport) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if err := t.ensureStream(topic); err != nil {
		return nil, err
	}

	durable := "worker_" + strings.ReplaceAll(topic, ".", "_")
	sub, err := t.js.PullSubscribe(topic, durable,
		nats.AckExplicit(),
		nats.AckWait(t.cfg.AckWait),
		nats.BindStream(t.streamName(topic)),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	out := make(chan *message.Message)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(out)
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				t.logger.Error("Failed to unsubscribe", err, watermill.LogFields{"topic": topic})
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.closing:
				return
			default:
			}

			batch, err := sub.Fetch(1, nats.MaxWait(t.cfg.FetchTimeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				// Transient broker trouble; report and keep polling.
				t.logger.Error("Fetch failed", err, watermill.LogFields{"topic": topic})
				continue
			}

			for _, m := range batch {
				if !t.deliver(ctx, out, m) {
					return
				}
			}
		}
	}()

	return out, nil
}

func (t *Transport) deliver(ctx context.Context, out chan<- *message.Message, m *nats.Msg) bool {
	uuid := m.Header.Get("Reporter-Uuid")
	if uuid == "" {
		uuid = watermill.NewUUID()
	}

	msg := message.NewMessage(uuid, m.Data)
	for k, vs := range m.Header {
		if strings.HasPrefix(k, metadataHeaderPrefix) && len(vs) > 0 {
			msg.Metadata[strings.TrimPrefix(k, metadataHeaderPrefix)] = vs[0]
		}
	}
	msg.SetContext(ctx)

	select {
	case out <- msg:
	case <-ctx.Done():
		return false
	case <-t.closing:
		return false
	}

	select {
	case <-msg.Acked():
		if err := m.Ack(); err != nil {
			t.logger.Error("Failed to ack job", err, watermill.LogFields{"uuid": uuid})
		}
	case <-msg.Nacked():
		if err := m.Nak(); err != nil {
			t.logger.Error("Failed to nak job", err, watermill.LogFields{"uuid": uuid})
		}
	case <-ctx.Done():
		return false
	case <-t.closing:
		return false
	}
	return true
}

// Close drains the subscriber loops and closes the connection.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closing)
		t.wg.Wait()
		t.conn.Close()
	})
	return nil
}

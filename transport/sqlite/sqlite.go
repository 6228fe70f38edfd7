// Package sqlite provides an embedded durable queue for the reporting
// relay, backed by a SQLite database file. Jobs are rows; a reservation
// window gives at-least-once delivery with redelivery on nack or crash.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/reporterhq/reporter/internal/jsoncodec"
	"github.com/reporterhq/reporter/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "sqlite"

const (
	// DefaultPollInterval is how often the subscriber looks for new jobs.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultReservation is how long a delivered job stays invisible to
	// other consumers before it is redelivered.
	DefaultReservation = 30 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS report_jobs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid           TEXT    NOT NULL,
	topic          TEXT    NOT NULL,
	payload        BLOB    NOT NULL,
	metadata       TEXT    NOT NULL,
	reserved_until INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS report_jobs_topic_idx ON report_jobs (topic, id);
`

// Register registers the SQLite transport with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.SQLiteCapabilities)
}

// Build creates a new SQLite transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	t, err := New(Config{FilePath: cfg.GetSQLiteFile()}, logger)
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
	return transport.SQLiteCapabilities
}

// Config holds SQLite-specific configuration.
type Config struct {
	// FilePath is the path to the database file.
	// Use ":memory:" for an in-memory queue (useful for testing).
	FilePath string

	// PollInterval is how often the subscriber polls for jobs.
	PollInterval time.Duration

	// Reservation is the redelivery window for unacknowledged jobs.
	Reservation time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Reservation <= 0 {
		c.Reservation = DefaultReservation
	}
	return c
}

// Transport is both publisher and subscriber over one database handle.
type Transport struct {
	db     *sql.DB
	cfg    Config
	logger watermill.LoggerAdapter

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New opens the database and creates the queue table.
func New(cfg Config, logger watermill.LoggerAdapter) (*Transport, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("sqlite: file path is required")
	}
	cfg = cfg.withDefaults()

	db, err := sql.Open("sqlite", cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and avoids
	// writer contention on file databases.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create queue schema: %w", err)
	}

	return &Transport{
		db:      db,
		cfg:     cfg,
		logger:  logger,
		closing: make(chan struct{}),
	}, nil
}

// Publish inserts the messages as queue rows.
func (t *Transport) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		md, err := jsoncodec.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("marshal job metadata: %w", err)
		}

		_, err = t.db.Exec(
			`INSERT INTO report_jobs (uuid, topic, payload, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
			msg.UUID, topic, msg.Payload, string(md), time.Now().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("enqueue job: %w", err)
		}
	}
	return nil
}

// Subscribe polls the queue table for jobs on the topic. Acked jobs are
// deleted; nacked jobs become visible again immediately.
func (t *Transport) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	out := make(chan *message.Message)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(out)

		ticker := time.NewTicker(t.cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.closing:
				return
			case <-ticker.C:
				for t.deliverNext(ctx, out, topic) {
				}
			}
		}
	}()

	return out, nil
}

type row struct {
	id       int64
	uuid     string
	payload  []byte
	metadata string
}

// reserveNext claims the oldest visible job for the topic.
func (t *Transport) reserveNext(topic string) (*row, error) {
	tx, err := t.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	var r row
	err = tx.QueryRow(
		`SELECT id, uuid, payload, metadata FROM report_jobs
		 WHERE topic = ? AND reserved_until < ? ORDER BY id LIMIT 1`,
		topic, now,
	).Scan(&r.id, &r.uuid, &r.payload, &r.metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	until := now + t.cfg.Reservation.Milliseconds()
	if _, err := tx.Exec(`UPDATE report_jobs SET reserved_until = ? WHERE id = ?`, until, r.id); err != nil {
		return nil, err
	}

	return &r, tx.Commit()
}

func (t *Transport) deliverNext(ctx context.Context, out chan<- *message.Message, topic string) bool {
	r, err := t.reserveNext(topic)
	if err != nil {
		t.logger.Error("Failed to reserve job", err, watermill.LogFields{"topic": topic})
		return false
	}
	if r == nil {
		return false
	}

	msg := message.NewMessage(r.uuid, r.payload)
	if r.metadata != "" {
		var md map[string]string
		if err := jsoncodec.Unmarshal([]byte(r.metadata), &md); err == nil {
			msg.Metadata = md
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
		if _, err := t.db.Exec(`DELETE FROM report_jobs WHERE id = ?`, r.id); err != nil {
			t.logger.Error("Failed to delete acked job", err, watermill.LogFields{"id": r.id})
		}
	case <-msg.Nacked():
		if _, err := t.db.Exec(`UPDATE report_jobs SET reserved_until = 0 WHERE id = ?`, r.id); err != nil {
			t.logger.Error("Failed to release nacked job", err, watermill.LogFields{"id": r.id})
		}
	case <-ctx.Done():
		return false
	case <-t.closing:
		return false
	}
	return true
}

// PendingCount reports how many jobs wait on the topic. Used by tests and
// operational checks.
func (t *Transport) PendingCount(topic string) (int64, error) {
	var n int64
	err := t.db.QueryRow(`SELECT COUNT(*) FROM report_jobs WHERE topic = ?`, topic).Scan(&n)
	return n, err
}

// Close stops the subscriber loops and closes the database.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closing)
		t.wg.Wait()
		t.db.Close()
	})
	return nil
}

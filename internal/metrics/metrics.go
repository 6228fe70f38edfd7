// Package metrics exposes Prometheus counters for the relay. The
// counters are optional: construct them with a nil registerer and they
// still count, they just are not scraped anywhere.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// RelayMetrics counts the outcomes of relay jobs on both ends of the
// queue.
type RelayMetrics struct {
	JobsPublished   prometheus.Counter
	PublishFailures prometheus.Counter
	JobsReplayed    prometheus.Counter
	JobsDiscarded   prometheus.Counter
	JobsForeign     prometheus.Counter
}

// NewRelayMetrics builds the counter set and registers it when a
// registerer is supplied.
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		JobsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reporter",
			Subsystem: "relay",
			Name:      "jobs_published_total",
			Help:      "Jobs serialized and enqueued by relay producers.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reporter",
			Subsystem: "relay",
			Name:      "publish_failures_total",
			Help:      "Jobs dropped because the broker rejected the publish.",
		}),
		JobsReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reporter",
			Subsystem: "relay",
			Name:      "jobs_replayed_total",
			Help:      "Jobs replayed into the local dispatcher tree.",
		}),
		JobsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reporter",
			Subsystem: "relay",
			Name:      "jobs_discarded_total",
			Help:      "Malformed jobs acknowledged and dropped.",
		}),
		JobsForeign: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reporter",
			Subsystem: "relay",
			Name:      "jobs_foreign_total",
			Help:      "Well-formed jobs left on the queue for another consumer.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.JobsPublished,
			m.PublishFailures,
			m.JobsReplayed,
			m.JobsDiscarded,
			m.JobsForeign,
		)
	}
	return m
}

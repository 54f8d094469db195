package nosqldb

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the handle-level Prometheus collectors. A Handle
// always has a non-nil *metrics; the collectors
// themselves are nil-safe to observe on even when never registered
// against a prometheus.Registerer, so a caller who doesn't care about
// metrics pays no registration cost.
type metrics struct {
	requestLatency    *prometheus.HistogramVec
	retryCount        *prometheus.CounterVec
	throttleCount     *prometheus.CounterVec
	protocolDowngrade prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nosqldb",
			Name:      "request_duration_seconds",
			Help:      "Latency of NoSQL Database requests by opcode and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "outcome"}),
		retryCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nosqldb",
			Name:      "request_retries_total",
			Help:      "Count of executor retry attempts by opcode and reason.",
		}, []string{"op", "reason"}),
		throttleCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nosqldb",
			Name:      "throttle_events_total",
			Help:      "Count of throttling responses observed by opcode.",
		}, []string{"op"}),
		protocolDowngrade: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nosqldb",
			Name:      "protocol_downgrades_total",
			Help:      "Count of protocol version negotiations forced downward by UnsupportedProtocol.",
		}),
	}
}

// Register adds m's collectors to reg. Calling this is optional; an
// unregistered Handle still observes into its collectors, it just isn't
// scraped by anything.
func (m *metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{m.requestLatency, m.retryCount, m.throttleCount, m.protocolDowngrade}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterMetrics exposes the handle's Prometheus collectors to reg, for
// callers that want to scrape them alongside their own.
func (h *Handle) RegisterMetrics(reg prometheus.Registerer) error {
	return h.metrics.Register(reg)
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the run coordination core:
//   - run lifecycle (started, finished, cancelled) and active-run gauge
//   - injection flow (queued, dropped, drained) and stop-intent hits
//   - output chunking volume and sizes
type Metrics struct {
	// RunCounter counts run lifecycle transitions.
	// Labels: event (started|finished|cancelled)
	RunCounter *prometheus.CounterVec

	// ActiveRuns is a gauge of currently registered runs.
	ActiveRuns prometheus.Gauge

	// InjectionCounter counts injection entries by outcome.
	// Labels: outcome (queued|dropped|drained)
	InjectionCounter *prometheus.CounterVec

	// StopIntentCounter counts injected entries classified as stop
	// requests.
	StopIntentCounter prometheus.Counter

	// ChunkCounter counts chunks produced for delivery.
	ChunkCounter prometheus.Counter

	// ChunkBytes measures chunk sizes in bytes.
	// Buckets: 128 B to 64 KiB
	ChunkBytes prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default
// Prometheus registry. Call once at process start.
func NewMetrics() *Metrics {
	return NewMetricsWith(nil)
}

// NewMetricsWith registers against the given registerer; nil means the
// default registry. Tests pass their own registry for isolation.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}

	return &Metrics{
		RunCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liverun_runs_total",
				Help: "Total number of run lifecycle events by type",
			},
			[]string{"event"},
		),

		ActiveRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "liverun_active_runs",
				Help: "Current number of registered runs",
			},
		),

		InjectionCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liverun_injections_total",
				Help: "Total number of injection entries by outcome",
			},
			[]string{"outcome"},
		),

		StopIntentCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "liverun_stop_intents_total",
				Help: "Total number of injected entries carrying stop intent",
			},
		),

		ChunkCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "liverun_chunks_total",
				Help: "Total number of output chunks produced",
			},
		),

		ChunkBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "liverun_chunk_bytes",
				Help:    "Size of produced output chunks in bytes",
				Buckets: prometheus.ExponentialBuckets(128, 2, 10),
			},
		),
	}
}

// NewNopMetrics returns metrics that are collected nowhere. Useful for
// embedders and tests that do not scrape.
func NewNopMetrics() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// RunStarted records a run start and bumps the active gauge.
func (m *Metrics) RunStarted() {
	m.RunCounter.WithLabelValues("started").Inc()
	m.ActiveRuns.Inc()
}

// RunFinished records a run finish and drops the active gauge.
func (m *Metrics) RunFinished() {
	m.RunCounter.WithLabelValues("finished").Inc()
	m.ActiveRuns.Dec()
}

// RunCancelled records a cancellation signal delivered to a run.
func (m *Metrics) RunCancelled() {
	m.RunCounter.WithLabelValues("cancelled").Inc()
}

// InjectionQueued records an entry accepted onto a run's queue.
func (m *Metrics) InjectionQueued() {
	m.InjectionCounter.WithLabelValues("queued").Inc()
}

// InjectionDropped records an entry refused because no run was accepting
// input.
func (m *Metrics) InjectionDropped() {
	m.InjectionCounter.WithLabelValues("dropped").Inc()
}

// InjectionsDrained records entries handed to the run loop at a
// checkpoint.
func (m *Metrics) InjectionsDrained(n int) {
	if n > 0 {
		m.InjectionCounter.WithLabelValues("drained").Add(float64(n))
	}
}

// StopIntent records an injected entry classified as a stop request.
func (m *Metrics) StopIntent() {
	m.StopIntentCounter.Inc()
}

// ChunksProduced records a chunking pass over outbound text.
func (m *Metrics) ChunksProduced(sizes []int) {
	for _, size := range sizes {
		m.ChunkCounter.Inc()
		m.ChunkBytes.Observe(float64(size))
	}
}

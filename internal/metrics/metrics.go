// Package metrics provides Prometheus instrumentation for the synthesis
// pipeline: request throughput and latency, per-strategy mining volume,
// cache efficiency, and throttle pressure.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the pipeline collectors. Constructed once per process and
// passed by reference; tests register against their own registry.
type Metrics struct {
	SynthesisTotal    prometheus.Counter
	SynthesisErrors   *prometheus.CounterVec
	SynthesisDuration prometheus.Histogram
	CandidatesMined   *prometheus.CounterVec
	TracksReturned    prometheus.Histogram
	CacheHits         prometheus.Gauge
	CacheMisses       prometheus.Gauge
	ThrottleRejected  *prometheus.CounterVec
}

// New registers the pipeline collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SynthesisTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "setlist_synthesis_requests_total",
			Help: "Total number of playlist synthesis requests",
		}),
		SynthesisErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "setlist_synthesis_errors_total",
			Help: "Total number of failed synthesis requests",
		}, []string{"reason"}),
		SynthesisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "setlist_synthesis_duration_seconds",
			Help:    "Duration of playlist synthesis requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		CandidatesMined: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "setlist_candidates_mined_total",
			Help: "Total number of candidates mined, by strategy source",
		}, []string{"source"}),
		TracksReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "setlist_tracks_returned",
			Help:    "Number of tracks in assembled playlists",
			Buckets: []float64{5, 10, 20, 30, 40, 50, 60},
		}),
		CacheHits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "setlist_tag_cache_hits",
			Help: "Cumulative tag cache hits",
		}),
		CacheMisses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "setlist_tag_cache_misses",
			Help: "Cumulative tag cache misses",
		}),
		ThrottleRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "setlist_throttle_rejected_total",
			Help: "Tasks rejected because an upstream throttle queue was full",
		}, []string{"upstream"}),
	}
}

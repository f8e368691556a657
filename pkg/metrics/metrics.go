package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ClonesTotal         *prometheus.CounterVec
	CloneFailuresTotal  *prometheus.CounterVec
	ClonesInFlight      prometheus.Gauge
	CaptureDuration     prometheus.Histogram
	GenerationDuration  *prometheus.HistogramVec
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ClonesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clones_total",
			Help: "Completed clones by the source of the returned HTML.",
		},
		[]string{"source"}, // ai, fallback, cache
	)

	CloneFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clone_failures_total",
			Help: "Clone failures and downgrades by pipeline stage.",
		},
		[]string{"stage"}, // capture, extract, generate, validate, cache, history
	)

	ClonesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clones_in_flight",
			Help: "Clones currently holding a browser slot.",
		},
	)

	CaptureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capture_duration_seconds",
			Help:    "Duration of headless browser captures.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Duration of AI HTML generation calls.",
			Buckets: []float64{1, 5, 10, 20, 40, 60, 120},
		},
		[]string{"provider"},
	)
}

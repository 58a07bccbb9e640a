package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all client-side metrics
type Metrics struct {
	// API request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	RequestFailures *prometheus.CounterVec

	// Query cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Optimistic mutation metrics
	OptimisticRollbacks prometheus.Counter
}

// New creates the metric set registered against reg. Passing a private
// registry keeps tests isolated from the default one.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests issued",
		}, []string{"resource", "method", "status"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"resource", "method"}),
		RequestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_request_failures_total",
			Help:      "Total number of failed API requests",
		}, []string{"resource", "method"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hits_total",
			Help:      "Total number of query cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_misses_total",
			Help:      "Total number of query cache misses",
		}),
		OptimisticRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimistic_rollbacks_total",
			Help:      "Total number of optimistic updates rolled back after a failed mutation",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RequestsTotal,
			m.RequestLatency,
			m.RequestFailures,
			m.CacheHits,
			m.CacheMisses,
			m.OptimisticRollbacks,
		)
	}

	return m
}

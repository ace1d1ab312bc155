// README: Prometheus collectors for oracle traffic, booking stages and HTTP.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "goride"

var (
	OracleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "oracle_calls_total", Help: "Oracle calls by operation and outcome"},
		[]string{"op", "outcome"},
	)
	OracleLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_call_duration_seconds",
			Help:      "Oracle call latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	OracleCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "oracle_cache_hits_total", Help: "Oracle responses served from cache"},
		[]string{"op"},
	)
	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "fallbacks_total", Help: "Deterministic fallbacks substituted for oracle failures"},
		[]string{"kind"},
	)
	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "stage_transitions_total", Help: "Booking stage transitions"},
		[]string{"from", "to"},
	)
	ActiveRides = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "active_rides", Help: "Rides with a live driver simulation"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

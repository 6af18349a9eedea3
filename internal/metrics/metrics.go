// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Refresh pass duration and outcome
// - Per-station fetch results
// - Gateway request latency and circuit breaker state
// - API endpoint latency and throughput

var (
	// Refresh Pass Metrics
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Duration of full station refresh passes in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120}, // one pass is N sequential station fetches
		},
	)

	RefreshLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "refresh_last_success_timestamp",
			Help: "Unix timestamp of the last completed refresh pass",
		},
	)

	StationFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "station_fetches_total",
			Help: "Total number of per-station fetch attempts",
		},
		[]string{"result"}, // "success", "token", "api_status", "transport"
	)

	CachedStations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cached_stations",
			Help: "Number of station snapshots in the cache",
		},
	)

	// Gateway Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of EVC gateway requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "guest_login", "location_details"
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of EVC gateway requests",
		},
		[]string{"breaker", "operation", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"breaker", "from", "to"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRefreshPass records a completed refresh pass.
func RecordRefreshPass(duration time.Duration, cached int) {
	RefreshDuration.Observe(duration.Seconds())
	RefreshLastSuccess.SetToCurrentTime()
	CachedStations.Set(float64(cached))
}

// RecordStationFetch records the outcome of a single station fetch.
func RecordStationFetch(result string) {
	StationFetches.WithLabelValues(result).Inc()
}

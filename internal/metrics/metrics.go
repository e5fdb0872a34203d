// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dietfit"

var (
	once sync.Once

	classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "BMI classifications served, by category.",
		},
		[]string{"category"},
	)

	profileRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_refresh_total",
			Help:      "Profile refreshes by outcome (ok, stale, error).",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Preview server requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Preview server request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Register registers the collectors with the default registry. Idempotent.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(classifications, profileRefreshes, httpRequests, httpDuration)
	})
}

// IncClassification counts a classification; category is "unavailable" for
// rejected input.
func IncClassification(category string) {
	classifications.WithLabelValues(category).Inc()
}

func IncProfileRefresh(result string) {
	profileRefreshes.WithLabelValues(result).Inc()
}

func ObserveHTTP(route string, code int, d time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

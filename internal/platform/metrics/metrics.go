// Package metrics owns the Prometheus collectors exported on /metrics
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "outreach"

var (
	registerOnce sync.Once

	outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "outcomes_total",
		Help:      "Resolved records by status, tier and method",
	}, []string{"status", "tier", "method"})
	reviews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "review_routed_total",
		Help:      "Records routed to human review by reason",
	}, []string{"reason"})
	resolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "resolve_duration_seconds",
		Help:      "Time to resolve one record, arbitration included",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	arbitrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "arbiter",
		Name:      "decisions_total",
		Help:      "Arbitration answers by decision; failed marks timeouts and contract violations",
	}, []string{"decision", "failed"})
	poolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "pool_companies",
		Help:      "Companies in the active candidate pool",
	})
	runPages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "runner",
		Name:      "pages_total",
		Help:      "Pending record pages processed by result",
	}, []string{"result"})
	httpRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern, method and status",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

// Register adds every collector to the default registry; safe to call repeatedly
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(outcomes, reviews, resolveDuration, arbitrations, poolSize, runPages, httpRequests)
	})
}

// Handler serves the default registry
func Handler() http.Handler { return promhttp.Handler() }

// ObserveOutcome counts one resolved record
func ObserveOutcome(status, tier, method string, d time.Duration) {
	if method == "" {
		method = "none"
	}
	outcomes.WithLabelValues(status, tier, method).Inc()
	resolveDuration.Observe(d.Seconds())
}

// IncReview counts a record sent to review
func IncReview(reason string) { reviews.WithLabelValues(reason).Inc() }

// ObserveArbitration counts one arbiter answer
func ObserveArbitration(decision string, failed bool) {
	arbitrations.WithLabelValues(decision, strconv.FormatBool(failed)).Inc()
}

// SetPoolSize records the active pool size
func SetPoolSize(n int) { poolSize.Set(float64(n)) }

// IncRunPage counts a runner page; result is ok, failed or dry_run
func IncRunPage(result string) { runPages.WithLabelValues(result).Inc() }

// ObserveHTTP records one served request
func ObserveHTTP(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Observe(d.Seconds())
}

// Package metrics exposes Prometheus metrics for the draw service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the service's collectors.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	drawsTotal      *prometheus.CounterVec
	drawRequests    *prometheus.CounterVec
	drawBatchSize   prometheus.Histogram
	missStreak      prometheus.Histogram
	sharedWeight    *prometheus.GaugeVec
	bannerUpdates   *prometheus.CounterVec
	bannerReloads   prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace (default "gacha").
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithRegistry uses reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = reg }
}

// NewManager creates and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{namespace: "gacha"}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.drawsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "draws_total",
		Help:      "Items drawn, by tier.",
	}, []string{"tier"})
	m.drawRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "draw_requests_total",
		Help:      "Draw requests, by outcome.",
	}, []string{"outcome"})
	m.drawBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "draw_request_count",
		Help:      "Number of draws per request.",
		Buckets:   []float64{1, 10, 20, 50, 100, 300},
	})
	m.missStreak = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "miss_streak",
		Help:      "Users' miss streak after each request.",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 99},
	})
	m.sharedWeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "shared_tier_weight",
		Help:      "Current shared tier weight of the banner, percentage points.",
	}, []string{"tier"})
	m.bannerUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "banner_updates_total",
		Help:      "Banner update attempts, by outcome.",
	}, []string{"outcome"})
	m.bannerReloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "banner_reloads_total",
		Help:      "Banner file reloads.",
	})
	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "code"})

	m.registry.MustRegister(
		m.drawsTotal, m.drawRequests, m.drawBatchSize, m.missStreak,
		m.sharedWeight, m.bannerUpdates, m.bannerReloads, m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDraw counts one item of the named tier.
func (m *Manager) RecordDraw(tier string) { m.drawsTotal.WithLabelValues(tier).Inc() }

// RecordRequest records a finished draw request.
func (m *Manager) RecordRequest(count, missStreak int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.drawRequests.WithLabelValues(outcome).Inc()
	if err == nil {
		m.drawBatchSize.Observe(float64(count))
		m.missStreak.Observe(float64(missStreak))
	}
}

// SetSharedWeight publishes the banner's current weight of tier.
func (m *Manager) SetSharedWeight(tier string, w float64) {
	m.sharedWeight.WithLabelValues(tier).Set(w)
}

// RecordBannerUpdate counts an update attempt: "applied", "unchanged" or "error".
func (m *Manager) RecordBannerUpdate(outcome string) {
	m.bannerUpdates.WithLabelValues(outcome).Inc()
}

// RecordBannerReload counts a reload from disk.
func (m *Manager) RecordBannerReload() { m.bannerReloads.Inc() }

// ObserveHTTP records one HTTP request.
func (m *Manager) ObserveHTTP(path, code string, seconds float64) {
	m.requestDuration.WithLabelValues(path, code).Observe(seconds)
}

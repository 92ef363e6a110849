// Package metrics exposes prometheus collectors for audits.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheError    = "error"
	CacheBypassed = "bypassed"
)

// Audit outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeCached       = "cached"
	OutcomeFetchFailure = "fetch_failure"
)

// Collector owns a private registry. A nil *Collector discards observations.
type Collector struct {
	registry *prometheus.Registry

	auditsTotal   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	cacheWrites   *prometheus.CounterVec
	auditDuration *prometheus.HistogramVec
	fetchDuration prometheus.Histogram
	overallScore  prometheus.Histogram
}

// NewCollector registers the audit metrics plus the Go and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		auditsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seo_audits_total",
				Help: "Total number of audits performed",
			},
			[]string{"mode", "outcome"},
		),

		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seo_cache_lookups_total",
				Help: "Result cache lookups by result",
			},
			[]string{"result"},
		),

		cacheWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seo_cache_writes_total",
				Help: "Result cache writes by status",
			},
			[]string{"status"},
		),

		auditDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seo_audit_duration_seconds",
				Help:    "Duration of audits in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"mode"},
		),

		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seo_fetch_duration_seconds",
				Help:    "Observed page load time in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2, 3, 5, 10, 15},
			},
		),

		overallScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seo_overall_score",
				Help:    "Distribution of overall SEO scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
	}
}

// RecordAudit counts one finished audit.
func (c *Collector) RecordAudit(mode, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.auditsTotal.WithLabelValues(mode, outcome).Inc()
	c.auditDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// RecordCacheLookup counts one cache lookup.
func (c *Collector) RecordCacheLookup(result string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite counts one cache write.
func (c *Collector) RecordCacheWrite(err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.cacheWrites.WithLabelValues(status).Inc()
}

// RecordFetch observes the measured load time.
func (c *Collector) RecordFetch(loadTime time.Duration) {
	if c == nil {
		return
	}
	c.fetchDuration.Observe(loadTime.Seconds())
}

// RecordScore observes an overall score.
func (c *Collector) RecordScore(score int) {
	if c == nil {
		return
	}
	c.overallScore.Observe(float64(score))
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

package astar

// metrics.go is a thin abstraction over Prometheus so the engine can run
// with or without a monitoring stack. With WithMetrics(reg) the labeled
// collectors below are registered; otherwise a no-op sink is used and the
// query path pays nothing for instrumentation.
//
// ┌──────────────────────────────────────┬──────┬────────┐
// │ Metric                               │ Type │ Labels │
// ├──────────────────────────────────────┼──────┼────────┤
// │ pathgrid_searches_total              │ Ctr  │ status │
// │ pathgrid_search_retries_total        │ Ctr  │ —      │
// │ pathgrid_path_cache_hits_total       │ Ctr  │ table  │
// │ pathgrid_path_cache_misses_total     │ Ctr  │ table  │
// │ pathgrid_projections_total           │ Ctr  │ —      │
// └──────────────────────────────────────┴──────┴────────┘

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is the internal instrumentation interface. The engine only
// talks to these methods and never to Prometheus directly.
type metricsSink interface {
	observeSearch(s Status)
	incRetry()
	incCacheHit(table string)
	incCacheMiss(table string)
	incProjection()
}

// Cache table label values.
const (
	tableNodeRoutes  = "node"
	tablePointRoutes = "point"
)

// noopMetrics is the default sink.
type noopMetrics struct{}

func (noopMetrics) observeSearch(Status) {}
func (noopMetrics) incRetry()            {}
func (noopMetrics) incCacheHit(string)   {}
func (noopMetrics) incCacheMiss(string)  {}
func (noopMetrics) incProjection()       {}

// promMetrics implements metricsSink on a Prometheus registry.
type promMetrics struct {
	searches    *prometheus.CounterVec
	retries     prometheus.Counter
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	projections prometheus.Counter
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pathgrid",
				Name:      "searches_total",
				Help:      "Completed search attempts by final status.",
			}, []string{"status"}),
		retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pathgrid",
				Name:      "search_retries_total",
				Help:      "Search attempts aborted by a graph version mismatch.",
			}),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pathgrid",
				Name:      "path_cache_hits_total",
				Help:      "Route cache hits.",
			}, []string{"table"}),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pathgrid",
				Name:      "path_cache_misses_total",
				Help:      "Route cache misses.",
			}, []string{"table"}),
		projections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pathgrid",
				Name:      "projections_total",
				Help:      "Point queries projected onto the graph.",
			}),
	}

	reg.MustRegister(pm.searches, pm.retries, pm.cacheHits, pm.cacheMisses, pm.projections)

	return pm
}

func (m *promMetrics) observeSearch(s Status) { m.searches.WithLabelValues(s.String()).Inc() }
func (m *promMetrics) incRetry()              { m.retries.Inc() }
func (m *promMetrics) incCacheHit(t string)   { m.cacheHits.WithLabelValues(t).Inc() }
func (m *promMetrics) incCacheMiss(t string)  { m.cacheMisses.WithLabelValues(t).Inc() }
func (m *promMetrics) incProjection()         { m.projections.Inc() }

// newMetricsSink picks the implementation for the configured registry.
func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}

	return newPromMetrics(reg)
}

package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docserve"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	cacheRequests   *prom.CounterVec
	notFound        prom.Counter
	renderDuration  prom.Histogram
	indexDuration   prom.Histogram
	indexDocuments  prom.Gauge
	rebuildOutcomes *prom.CounterVec
	cacheEntries    prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		cacheRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_cache_requests_total",
			Help:      "Render cache lookups by result",
		}, []string{"result"}),
		notFound: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "not_found_total",
			Help:      "Slugs that resolved to no document",
		}),
		renderDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent reading and rendering a document on a cache miss",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 14),
		}),
		indexDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Duration of full content index builds",
			Buckets:   prom.DefBuckets,
		}),
		indexDocuments: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Documents in the active index snapshot",
		}),
		rebuildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "index_rebuilds_total",
			Help:      "Index rebuilds by outcome",
		}, []string{"outcome"}),
		cacheEntries: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "render_cache_entries",
			Help:      "Entries currently held by the render cache",
		}),
	}
	reg.MustRegister(pr.cacheRequests, pr.notFound, pr.renderDuration, pr.indexDuration,
		pr.indexDocuments, pr.rebuildOutcomes, pr.cacheEntries)
	return pr
}

func (p *PrometheusRecorder) IncCacheHit() {
	if p == nil {
		return
	}
	p.cacheRequests.WithLabelValues("hit").Inc()
}

func (p *PrometheusRecorder) IncCacheMiss() {
	if p == nil {
		return
	}
	p.cacheRequests.WithLabelValues("miss").Inc()
}

func (p *PrometheusRecorder) IncNotFound() {
	if p == nil {
		return
	}
	p.notFound.Inc()
}

func (p *PrometheusRecorder) ObserveRender(d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveIndexBuild(d time.Duration, docs int) {
	if p == nil {
		return
	}
	p.indexDuration.Observe(d.Seconds())
	p.indexDocuments.Set(float64(docs))
}

func (p *PrometheusRecorder) IncRebuild(outcome RebuildOutcome) {
	if p == nil {
		return
	}
	p.rebuildOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetCacheEntries(n int) {
	if p == nil {
		return
	}
	p.cacheEntries.Set(float64(n))
}

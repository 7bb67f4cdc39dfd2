package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	pageResults   *prom.CounterVec
	buildOutcome  *prom.CounterVec
	pagesTotal    prom.Gauge
	categories    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogforge",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogforge",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.pageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogforge",
			Name:      "page_results_total",
			Help:      "Per-document render results by outcome",
		}, []string{"result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogforge",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesTotal = prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogforge",
			Name:      "pages_total",
			Help:      "Pages emitted by the last build",
		})
		pr.categories = prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogforge",
			Name:      "categories_total",
			Help:      "Distinct categories in the last build",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.pageResults, pr.buildOutcome, pr.pagesTotal, pr.categories)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetPagesTotal(n int) {
	if p == nil || p.pagesTotal == nil {
		return
	}
	p.pagesTotal.Set(float64(n))
}

func (p *PrometheusRecorder) SetCategoriesTotal(n int) {
	if p == nil || p.categories == nil {
		return
	}
	p.categories.Set(float64(n))
}

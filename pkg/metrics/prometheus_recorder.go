package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	renderErrors   *prom.CounterVec
	layoutDepth    prom.Histogram
	cacheLookups   *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "boiler",
			Name:      "render_duration_seconds",
			Help:      "Duration of complete template renders",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		renderErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "boiler",
			Name:      "render_errors_total",
			Help:      "Failed renders by error kind",
		}, []string{"kind"}),
		layoutDepth: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "boiler",
			Name:      "layout_depth",
			Help:      "Number of layouts wrapping each render",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "boiler",
			Name:      "template_cache_lookups_total",
			Help:      "Parsed template cache lookups by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderErrors, pr.layoutDepth, pr.cacheLookups)
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration, result ResultLabel) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderError(kind string) {
	if p == nil || p.renderErrors == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	p.renderErrors.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) ObserveLayoutDepth(depth int) {
	if p == nil || p.layoutDepth == nil {
		return
	}
	p.layoutDepth.Observe(float64(depth))
}

func (p *PrometheusRecorder) IncTemplateCache(hit bool) {
	if p == nil || p.cacheLookups == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(res).Inc()
}

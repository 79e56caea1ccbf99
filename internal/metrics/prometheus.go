package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exposes Recorder events as Prometheus collectors.
type PrometheusRecorder struct {
	redirectsServed  *prometheus.CounterVec
	botsDetected     prometheus.Counter
	clicksAppended   *prometheus.CounterVec
	linkCacheLookups *prometheus.CounterVec
	redirectDuration prometheus.Histogram
}

// NewPrometheus returns a Recorder registered against reg.
// Pass prometheus.DefaultRegisterer for the default registry.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		redirectsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkveil",
			Name:      "redirects_served_total",
			Help:      "Redirect responses served, by outcome.",
		}, []string{"outcome"}),
		botsDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linkveil",
			Name:      "bots_detected_total",
			Help:      "Requests classified as automated.",
		}),
		clicksAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkveil",
			Name:      "clicks_appended_total",
			Help:      "Click events appended to the store, by status.",
		}, []string{"status"}),
		linkCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkveil",
			Name:      "link_cache_lookups_total",
			Help:      "Link cache lookups, by result.",
		}, []string{"result"}),
		redirectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linkveil",
			Name:      "redirect_duration_seconds",
			Help:      "End-to-end redirect resolution duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (p *PrometheusRecorder) IncRedirectServed(outcome string) {
	p.redirectsServed.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncBotDetected() {
	p.botsDetected.Inc()
}

func (p *PrometheusRecorder) ObserveRedirectDuration(duration time.Duration) {
	p.redirectDuration.Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncClickAppended(status string) {
	p.clicksAppended.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncLinkCacheHit() {
	p.linkCacheLookups.WithLabelValues("hit").Inc()
}

func (p *PrometheusRecorder) IncLinkCacheMiss() {
	p.linkCacheLookups.WithLabelValues("miss").Inc()
}

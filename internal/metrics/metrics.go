package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the screener.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysesTotal        *prometheus.CounterVec // labels: outcome=ok|invalid_ticker|no_data|error
	RecommendationsTotal *prometheus.CounterVec // labels: action
	AnalysisDur          prometheus.Histogram
	FetchDur             *prometheus.HistogramVec // labels: kind=prices|fundamentals
	CacheLookups         *prometheus.CounterVec   // labels: kind, result=hit|miss
}

// NewMetrics creates all collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_analyses_total",
			Help: "Total analysis runs by outcome",
		}, []string{"outcome"}),
		RecommendationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_recommendations_total",
			Help: "Recommendations issued by action",
		}, []string{"action"}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_analysis_duration_seconds",
			Help:    "End-to-end analysis latency including fetches",
			Buckets: prometheus.DefBuckets,
		}),
		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_fetch_duration_seconds",
			Help:    "Data provider latency by request kind",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_cache_lookups_total",
			Help: "Fetch cache lookups by kind and result",
		}, []string{"kind", "result"}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.RecommendationsTotal,
		m.AnalysisDur,
		m.FetchDur,
		m.CacheLookups,
	)
	return m
}

// ObserveAnalysis records one finished run. action is empty for failed runs.
func (m *Metrics) ObserveAnalysis(outcome, action string, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
	m.AnalysisDur.Observe(d.Seconds())
	if action != "" {
		m.RecommendationsTotal.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) ObserveFetch(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDur.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveCache satisfies collector.CacheObserver.
func (m *Metrics) ObserveCache(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

// Handler exposes the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

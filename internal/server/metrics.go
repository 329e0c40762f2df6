package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	records     *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// newMetrics uses a registry per server so several stages can share a process.
func newMetrics(stageName string) *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"stage": stageName}, reg))
	return &metrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "discflight_stage_runs_total",
			Help: "Stage runs by outcome",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discflight_stage_run_duration_seconds",
			Help:    "Stage run duration",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"outcome"}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "discflight_stage_records_total",
			Help: "Records touched by stage runs, by kind",
		}, []string{"kind"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "discflight_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

func (m *metrics) observeRun(outcome string, d time.Duration, counts map[string]int) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.WithLabelValues(outcome).Observe(d.Seconds())
	for kind, n := range counts {
		if n > 0 {
			m.records.WithLabelValues(kind).Add(float64(n))
		}
	}
}

func (m *metrics) observeRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

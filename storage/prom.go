package storage

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter handles Prometheus metrics collection and serving.
type PrometheusExporter struct {
	registry *prometheus.Registry

	latencyHistogram *prometheus.HistogramVec
	requestCounter   *prometheus.CounterVec
	tokenCounter     *prometheus.CounterVec
	concurrencyGauge prometheus.Gauge
	cpuGauge         prometheus.Gauge
	memGauge         prometheus.Gauge
}

// NewPrometheusExporter creates an exporter with its own registry.
func NewPrometheusExporter() *PrometheusExporter {
	exporter := &PrometheusExporter{
		registry: prometheus.NewRegistry(),
		latencyHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_bench_latency_seconds",
				Help:    "Request latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 16), // 10ms to ~5min
			},
			[]string{"benchmark"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_bench_requests_total",
				Help: "Total number of requests",
			},
			[]string{"benchmark", "status"},
		),
		tokenCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_bench_tokens_total",
				Help: "Total approximate generated tokens",
			},
			[]string{"benchmark"},
		),
		concurrencyGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "llm_bench_concurrency",
				Help: "Configured concurrency level",
			},
		),
		cpuGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "llm_bench_cpu_utilization",
				Help: "Load generator CPU utilization percentage",
			},
		),
		memGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "llm_bench_memory_utilization",
				Help: "Load generator memory utilization percentage",
			},
		),
	}

	exporter.registry.MustRegister(
		exporter.latencyHistogram,
		exporter.requestCounter,
		exporter.tokenCounter,
		exporter.concurrencyGauge,
		exporter.cpuGauge,
		exporter.memGauge,
	)

	return exporter
}

// StartServer starts the Prometheus HTTP server.
func (pe *PrometheusExporter) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(pe.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}

// RecordOutcome records a single request attempt.
func (pe *PrometheusExporter) RecordOutcome(benchmark string, latencyS float64, tokens int, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	pe.latencyHistogram.WithLabelValues(benchmark).Observe(latencyS)
	pe.requestCounter.WithLabelValues(benchmark, status).Inc()
	if tokens > 0 {
		pe.tokenCounter.WithLabelValues(benchmark).Add(float64(tokens))
	}
}

// UpdateConcurrency updates the concurrency metric.
func (pe *PrometheusExporter) UpdateConcurrency(concurrency int) {
	pe.concurrencyGauge.Set(float64(concurrency))
}

// UpdateSystemStats updates load-generator host metrics.
func (pe *PrometheusExporter) UpdateSystemStats(cpuPct, memPct float64) {
	pe.cpuGauge.Set(cpuPct)
	pe.memGauge.Set(memPct)
}

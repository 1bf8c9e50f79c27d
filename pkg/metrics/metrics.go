// Package metrics exposes prometheus collectors for the analysis pipeline.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec
	LinesDroppedTotal *prometheus.CounterVec
	LLMRequestsTotal  *prometheus.CounterVec
	LLMDuration       *prometheus.HistogramVec
	StageDuration     *prometheus.HistogramVec
}

// New registers and returns the application collectors
func New() *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paisalens_analyses_total",
			Help: "Statement analyses processed, by outcome.",
		}, []string{"status"}),
		LinesDroppedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paisalens_lines_dropped_total",
			Help: "Statement lines dropped by the cleaner, by reason.",
		}, []string{"reason"}),
		LLMRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paisalens_llm_requests_total",
			Help: "Chat-completion requests, by kind and outcome.",
		}, []string{"kind", "status"}),
		LLMDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paisalens_llm_request_duration_seconds",
			Help:    "Latency of chat-completion requests.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"kind"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paisalens_pipeline_stage_duration_seconds",
			Help:    "Latency of each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

// ObserveStage records a stage duration
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Serve starts the metrics endpoint on its own port
func Serve(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}

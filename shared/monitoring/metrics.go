package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	requests          *prometheus.CounterVec
	transcripts       *prometheus.CounterVec
	extractorDuration *prometheus.HistogramVec
	summaryStreams    *prometheus.CounterVec
	summaryChunks     prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytsummary_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "status"}),
		transcripts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytsummary_transcripts_total",
			Help: "Transcript fetches, by result (ok, unavailable, failed).",
		}, []string{"result"}),
		extractorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ytsummary_extractor_duration_seconds",
			Help:    "Time spent in the video extractor, by operation and outcome.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"operation", "outcome"}),
		summaryStreams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytsummary_summary_streams_total",
			Help: "Summary streams, by outcome (completed, failed, cancelled).",
		}, []string{"outcome"}),
		summaryChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytsummary_summary_chunks_total",
			Help: "Summary chunks relayed to clients.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.transcripts,
		m.extractorDuration,
		m.summaryStreams,
		m.summaryChunks,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveTranscript(result string) {
	if m == nil {
		return
	}
	m.transcripts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveExtraction(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.extractorDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveSummaryStream(outcome string, chunks int) {
	if m == nil {
		return
	}
	m.summaryStreams.WithLabelValues(outcome).Inc()
	m.summaryChunks.Add(float64(chunks))
}

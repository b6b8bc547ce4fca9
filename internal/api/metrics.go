package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

// Metrics holds the service's Prometheus collectors on a private registry,
// so several apps can coexist in one process (as they do in tests).
type Metrics struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	lines     *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement_ocr",
			Name:      "documents_total",
			Help:      "Documents parsed, by input kind.",
		}, []string{"input"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement_ocr",
			Name:      "lines_total",
			Help:      "Input lines seen, by outcome.",
		}, []string{"result"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "statement_ocr",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(m.documents, m.lines, m.requests)
	return m
}

func (m *Metrics) observeDocument(input string, info *models.StatementInfo) {
	m.documents.WithLabelValues(input).Inc()
	m.lines.WithLabelValues(models.ResultParsed).Add(float64(len(info.Transactions)))
	m.lines.WithLabelValues(models.ResultSkipped).Add(float64(len(info.DebugLines) - len(info.Transactions)))
}

func (m *Metrics) observeRequest(method, route string, status int, took time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

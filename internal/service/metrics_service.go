package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	documentsIssued *prometheus.CounterVec
	verifications   *prometheus.CounterVec
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	documentsIssued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_issued_total",
		Help: "Total document issuance attempts by kind and outcome",
	}, []string{"kind", "outcome"})

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_verifications_total",
		Help: "Total verification lookups by outcome",
	}, []string{"outcome"})

	registry.MustRegister(requestDuration, requestTotal, documentsIssued, verifications)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		documentsIssued: documentsIssued,
		verifications:   verifications,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records duration and count for a finished request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// DocumentIssued counts an issuance attempt.
func (m *MetricsService) DocumentIssued(kind string, ok bool) {
	outcome := "issued"
	if !ok {
		outcome = "failed"
	}
	m.documentsIssued.WithLabelValues(kind, outcome).Inc()
}

// VerificationObserved counts a verification lookup.
func (m *MetricsService) VerificationObserved(verified bool) {
	outcome := "not_verified"
	if verified {
		outcome = "verified"
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classroom_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classroom_api_requests_in_flight",
			Help: "Number of API requests currently being served",
		},
	)

	// Object storage metrics
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_storage_operations_total",
			Help: "Total number of object storage operations",
		},
		[]string{"backend", "operation", "result"},
	)

	// Domain metrics
	DocumentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_document_operations_total",
			Help: "Document lifecycle operations by outcome",
		},
		[]string{"operation", "result"},
	)
)

func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIRequestsInFlight.Inc()
	} else {
		APIRequestsInFlight.Dec()
	}
}

func RecordStorageOperation(backend, operation string, err error) {
	StorageOperations.WithLabelValues(backend, operation, result(err)).Inc()
}

func RecordDocumentOperation(operation string, err error) {
	DocumentOperations.WithLabelValues(operation, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

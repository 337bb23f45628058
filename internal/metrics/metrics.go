package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generation metrics
	RecordsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigen_records_generated_total",
			Help: "Total number of synthetic records generated",
		},
		[]string{"category", "status"},
	)

	ResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apigen_response_time_ms",
			Help:    "Distribution of generated response times in milliseconds",
			Buckets: []float64{50, 100, 150, 200, 250, 300, 400, 500, 650, 800, 1000},
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "apigen_generation_duration_seconds",
			Help:    "Duration of dataset generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Export metrics
	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apigen_export_duration_seconds",
			Help:    "Duration of sink exports in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"},
	)

	ExportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigen_export_errors_total",
			Help: "Total number of failed sink exports",
		},
		[]string{"sink"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigen_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"path", "code"},
	)
)

// ObserveRecord counts one generated record.
func ObserveRecord(category, status string, responseTimeMs float64) {
	RecordsGenerated.WithLabelValues(category, status).Inc()
	ResponseTime.WithLabelValues(status).Observe(responseTimeMs)
}

// ObserveExport records a sink export duration and, on failure, an error.
func ObserveExport(sink string, d time.Duration, err error) {
	if d < 0 {
		d = 0
	}
	ExportDuration.WithLabelValues(sink).Observe(d.Seconds())
	if err != nil {
		ExportErrors.WithLabelValues(sink).Inc()
	}
}

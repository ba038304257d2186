package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets optimized for API response times ranging from
	// milliseconds (cached reads) to tens of seconds (sandbox executions)
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics
	DBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics
	StorageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_registrations_total",
			Help: "Total registration attempts by phase",
		},
		[]string{"phase", "status"},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_logins_total",
			Help: "Total login attempts",
		},
		[]string{"status"},
	)

	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_profile_updates_total",
			Help: "Total number of profile updates",
		},
		[]string{"role", "status"},
	)

	ResumeUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_resume_uploads_total",
			Help: "Total number of resume uploads",
		},
		[]string{"status"},
	)

	InterviewRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_interview_requests_total",
			Help: "Total number of interview scheduling operations",
		},
		[]string{"operation", "status"},
	)

	JobApplications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_job_applications_total",
			Help: "Total number of job applications",
		},
		[]string{"status"},
	)

	PaymentOrders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_payment_orders_total",
			Help: "Total number of payment gateway operations",
		},
		[]string{"operation", "status"},
	)

	// Collaborative Session Metrics
	CollabRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "algospace_collab_rooms",
			Help: "Number of active collaborative session rooms",
		},
	)

	CollabClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "algospace_collab_clients",
			Help: "Number of connected collaborative session clients",
		},
	)

	CollabMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_collab_messages_total",
			Help: "Total number of collaborative session messages processed",
		},
		[]string{"type", "outcome"},
	)

	CodeExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algospace_code_executions_total",
			Help: "Total number of sandbox code executions",
		},
		[]string{"language", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

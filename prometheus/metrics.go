package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "repurpose_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "repurpose_register_total",
			Help: "Total number of user registrations",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repurpose_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Status category counter
	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repurpose_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repurpose_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "login_failure", "invalid_token", "inactive_user" etc.
	)

	// Content ingestion counter
	ContentIngestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repurpose_content_ingested_total",
			Help: "Total number of content items ingested",
		},
		[]string{"content_type", "status"},
	)

	// Per-platform generation outcome
	GenerationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repurpose_generations_total",
			Help: "Total number of platform generations by outcome",
		},
		[]string{"platform", "status"}, // status is "success" or "failure"
	)

	// Replies that carried no parseable JSON object
	UnstructuredReplyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repurpose_unstructured_replies_total",
			Help: "Total number of model replies wrapped as plain content",
		},
		[]string{"platform"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repurpose_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repurpose_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Model call duration
	ModelCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repurpose_model_call_duration_seconds",
			Help:    "Duration of text-generation calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"platform", "status"},
	)
)

// Gauge metrics
var (
	// Platforms currently waiting on the model
	InFlightGenerations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "repurpose_generations_in_flight",
			Help: "Number of platform generations currently in flight",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "repurpose_info",
			Help: "Information about the repurposing service",
		},
		[]string{"version", "model_mode"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(StatusCategoryCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(ContentIngestCounter)
	prometheus.MustRegister(GenerationCounter)
	prometheus.MustRegister(UnstructuredReplyCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(ModelCallDuration)

	// Register gauges
	prometheus.MustRegister(InFlightGenerations)
	prometheus.MustRegister(InfoGauge)
}

// SetServiceInfo publishes the build version and whether the mock model is active
func SetServiceInfo(version string, mock bool) {
	mode := "live"
	if mock {
		mode = "mock"
	}
	InfoGauge.Reset()
	InfoGauge.With(prometheus.Labels{"version": version, "model_mode": mode}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations.
// Call the returned func when the operation is done.
func TrackDBOperation(operation string) func() {
	startTime := time.Now()
	return func() {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// TrackModelCall measures a single platform's model call and records its outcome
func TrackModelCall(platform string) func(err error) {
	startTime := time.Now()
	InFlightGenerations.Inc()
	return func(err error) {
		InFlightGenerations.Dec()
		status := "success"
		if err != nil {
			status = "failure"
		}
		ModelCallDuration.With(prometheus.Labels{
			"platform": platform,
			"status":   status,
		}).Observe(time.Since(startTime).Seconds())
		GenerationCounter.With(prometheus.Labels{
			"platform": platform,
			"status":   status,
		}).Inc()
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			code := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			}
			status := strconv.Itoa(code)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			if category := statusCategory(code); category != "" {
				StatusCategoryCounter.With(prometheus.Labels{"category": category}).Inc()
			}

			return err
		}
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordContentIngest records an ingestion attempt by source type
func RecordContentIngest(contentType string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	ContentIngestCounter.With(prometheus.Labels{
		"content_type": contentType,
		"status":       status,
	}).Inc()
}

// RecordUnstructuredReply counts a model reply that had to be wrapped
func RecordUnstructuredReply(platform string) {
	UnstructuredReplyCounter.With(prometheus.Labels{"platform": platform}).Inc()
}

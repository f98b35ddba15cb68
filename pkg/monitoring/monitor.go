package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SuggestionEngineRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestion_engine_runs_total",
			Help: "Total number of suggestion engine passes",
		},
	)

	SuggestionsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestions_generated_total",
			Help: "Total number of suggestions produced by the engine",
		},
	)

	SuggestionQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "suggestion_queue_depth",
			Help: "Current number of pending suggestions in the queue",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SuggestionEngineRuns)
	prometheus.MustRegister(SuggestionsGenerated)
	prometheus.MustRegister(SuggestionQueueDepth)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

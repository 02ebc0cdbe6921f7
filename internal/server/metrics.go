package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors served on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Requests           *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	Generations        *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	Publishes          *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_engine_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "post_engine_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_engine_generations_total",
				Help: "Post generations by outcome",
			},
			[]string{"outcome"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "post_engine_generation_duration_seconds",
				Help:    "Time spent generating one post",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		Publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_engine_publishes_total",
				Help: "Publish attempts by outcome",
			},
			[]string{"outcome"},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Requests, m.RequestDuration, m.Generations, m.GenerationDuration, m.Publishes)
	return m
}

// IncGeneration counts one generation by outcome and records how long it took.
func (m *Metrics) IncGeneration(outcome string, elapsed time.Duration) {
	if m == nil || m.Generations == nil {
		return
	}
	m.Generations.WithLabelValues(outcome).Inc()
	if m.GenerationDuration != nil {
		m.GenerationDuration.Observe(elapsed.Seconds())
	}
}

// IncPublish counts one publish attempt by outcome.
func (m *Metrics) IncPublish(outcome string) {
	if m == nil || m.Publishes == nil {
		return
	}
	m.Publishes.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.Requests.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	reg := prometheus.NewRegistry()
	if m != nil {
		reg = m.registry
	}
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

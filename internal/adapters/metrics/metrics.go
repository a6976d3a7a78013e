package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/workers"
)

var _ workers.Metrics = (*Metrics)(nil)

// Metrics owns a private registry with the HTTP and reminder job collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	activeConnections prometheus.Gauge

	reminderRuns     prometheus.Counter
	reminderDuration prometheus.Histogram
	reminderUsers    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of in-flight HTTP requests",
			},
		),
		reminderRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reminder_runs_total",
				Help: "Completed reminder job runs",
			},
		),
		reminderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reminder_run_duration_seconds",
				Help:    "Wall time of one reminder job run",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		),
		reminderUsers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_users_total",
				Help: "Users processed by the reminder job, by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal, m.requestDuration, m.activeConnections,
		m.reminderRuns, m.reminderDuration, m.reminderUsers,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRun(d time.Duration) {
	m.reminderRuns.Inc()
	m.reminderDuration.Observe(d.Seconds())
}

func (m *Metrics) UserProcessed(outcome string) {
	m.reminderUsers.WithLabelValues(outcome).Inc()
}

// Middleware records every request under its route template, so path
// parameters do not blow up label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.activeConnections.Inc()
		defer m.activeConnections.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Registrations      *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	TokenVerifications *prometheus.CounterVec
	OrdersPlaced       prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates collectors on a private registry so tests can build many.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodonline",
			Name:      "registrations_total",
			Help:      "Accounts registered, by role.",
		}, []string{"role"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodonline",
			Name:      "logins_total",
			Help:      "Login attempts, by result.",
		}, []string{"result"}),
		TokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodonline",
			Name:      "token_verifications_total",
			Help:      "Activation and reset token checks, by purpose and result.",
		}, []string{"purpose", "result"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foodonline",
			Name:      "orders_placed_total",
			Help:      "Orders marked as paid.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "foodonline",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.Registrations,
		m.Logins,
		m.TokenVerifications,
		m.OrdersPlaced,
		m.RequestDuration,
	)
	return m
}

// Middleware records request latency labelled by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission kinds
const (
	KindContact        = "contact"
	KindQuote          = "quote"
	KindProductInquiry = "product_inquiry"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Database metrics
	dbConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Business metrics
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_submissions_total",
			Help: "Total number of public form submissions",
		},
		[]string{"kind"}, // contact, quote, product_inquiry
	)

	repliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_replies_total",
			Help: "Total number of staff reply emails attempted",
		},
		[]string{"inquiry_type", "status"}, // status: sent, failed
	)
)

// Middleware records request counts and latency per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordSubmission records a new public form submission
func RecordSubmission(kind string) {
	submissionsTotal.WithLabelValues(kind).Inc()
}

// RecordReply records the outcome of a reply email
func RecordReply(inquiryType string, sent bool) {
	status := "failed"
	if sent {
		status = "sent"
	}
	repliesTotal.WithLabelValues(inquiryType, status).Inc()
}

// UpdateDBConnections copies connection pool stats into the gauges
func UpdateDBConnections(stats sql.DBStats) {
	dbConnectionsOpen.Set(float64(stats.OpenConnections))
	dbConnectionsIdle.Set(float64(stats.Idle))
}

package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kart-io/askwx/pkg/infra/middleware/internal/pathutil"
)

// MetricsCollector collects HTTP metrics into a Prometheus registry.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
	gatherer        prometheus.Gatherer
}

// NewMetricsCollector registers the HTTP metrics on reg.
// namespace 为空时指标名不带前缀。
func NewMetricsCollector(reg *prometheus.Registry, namespace string) *MetricsCollector {
	factory := promauto.With(reg)
	m := &MetricsCollector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"}),
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_active",
			Help:      "Current number of active requests.",
		}),
		gatherer: reg,
	}
	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "process_start_time_seconds",
		Help:      "Start time of the process.",
	}).Set(float64(time.Now().Unix()))
	return m
}

// Middleware records request count, latency and in-flight requests.
func (m *MetricsCollector) Middleware(skipPaths ...string) gin.HandlerFunc {
	skip := pathutil.NewPathMatcher(skipPaths, nil)
	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.activeRequests.Inc()
		start := time.Now()
		c.Next()
		m.activeRequests.Dec()

		// 未匹配路由统一记为 unmatched，避免标签基数膨胀
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

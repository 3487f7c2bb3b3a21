package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openhealthcare/openehr-api/pkg/metrics"
)

// Handler exposes a registry on /metrics and records request metrics.
type Handler struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func New(registry *prometheus.Registry, m *metrics.Metrics) *Handler {
	return &Handler{
		registry: registry,
		metrics:  m,
	}
}

// Middleware labels requests by route template so IDs do not explode the
// label space. Unmatched routes share one label.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		h.metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		h.metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}

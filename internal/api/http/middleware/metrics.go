package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raksha-safety/raksha-backend/internal/metrics"
)

// Metrics records request latency labelled by the matched route template, so
// /api/sos/:sos_id stays one series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

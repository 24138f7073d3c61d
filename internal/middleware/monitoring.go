package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/monitoring"
)

// Metrics 记录 HTTP 请求指标的中间件。
// endpoint 用路由模板而非原始路径，避免标签基数爆炸。
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		monitoring.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

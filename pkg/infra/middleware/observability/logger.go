// Package observability 提供访问日志、链路追踪与 Prometheus 指标中间件。
package observability

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/askwx/pkg/infra/middleware/common"
	"github.com/kart-io/askwx/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
)

// 日志字段切片池，减少每个请求的分配。
var fieldsPool = sync.Pool{
	New: func() interface{} {
		s := make([]interface{}, 0, 16)
		return &s
	},
}

// LoggerWithOptions 记录每个请求的访问日志。
// 5xx 使用 Error 级别，4xx 使用 Warn 级别，其余为 Info。
func LoggerWithOptions(opts mwopts.LoggerOptions) gin.HandlerFunc {
	skip := pathutil.NewPathMatcher(opts.SkipPaths, nil)

	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := fieldsPool.Get().(*[]interface{})
		*fields = append((*fields)[:0],
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"remote_addr", c.ClientIP(),
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
			"request_id", common.GetRequestID(c.Request.Context()),
		)
		if len(c.Errors) > 0 {
			*fields = append(*fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Errorw("HTTP Request", (*fields)...)
		case status >= 400:
			logger.Warnw("HTTP Request", (*fields)...)
		default:
			logger.Infow("HTTP Request", (*fields)...)
		}

		*fields = (*fields)[:0]
		fieldsPool.Put(fields)
	}
}

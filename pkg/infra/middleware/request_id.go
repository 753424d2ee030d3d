// Package middleware 提供 askwx HTTP 服务使用的 gin 中间件。
// 子包按关注点划分：observability (日志/追踪/指标)、resilience (恢复/超时/限流)、security (CORS)。
package middleware

import (
	"github.com/gin-gonic/gin"

	ctxlog "github.com/kart-io/askwx/pkg/infra/logger"
	"github.com/kart-io/askwx/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
)

// RequestIDWithOptions 为每个请求分配请求 ID。
// 客户端已携带的 ID 会被沿用，并写入响应头和请求上下文。
func RequestIDWithOptions(opts mwopts.RequestIDOptions) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = common.HeaderXRequestID
	}
	generate := common.Generator(opts.GeneratorType)

	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" || len(id) > 128 {
			id = generate()
		}
		c.Header(header, id)
		c.Set("request_id", id)
		ctx := common.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctxlog.WithRequestID(ctx, id))
		c.Next()
	}
}

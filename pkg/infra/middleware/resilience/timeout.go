package resilience

import (
	"context"
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/askwx/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
	"github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/response"
)

// TimeoutWithOptions 为请求上下文设置截止时间。
// 处理器需自行观察 ctx；若截止时间已过且处理器未写入响应，返回 ErrTimeout。
func TimeoutWithOptions(opts mwopts.TimeoutOptions) gin.HandlerFunc {
	skip := pathutil.NewPathMatcher(opts.SkipPaths, nil)

	return func(c *gin.Context) {
		if opts.Timeout <= 0 || skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), opts.Timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !c.Writer.Written() && stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			response.Fail(c, errors.ErrTimeout)
		}
	}
}

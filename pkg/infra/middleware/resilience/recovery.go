// Package resilience 提供恢复、超时与限流中间件。
package resilience

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/askwx/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
	"github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/response"
)

// PanicHandler is called after a panic has been recovered.
type PanicHandler func(c *gin.Context, err interface{}, stack []byte)

// isProductionEnvironment 检测当前是否为生产环境。
func isProductionEnvironment() bool {
	for _, key := range []string{"APP_ENV", "GO_ENV"} {
		v := strings.ToLower(os.Getenv(key))
		if v == "production" || v == "prod" {
			return true
		}
	}
	return false
}

// RecoveryWithOptions 捕获处理器中的 panic，记录日志并返回 ErrPanic 响应。
// 生产环境下不会记录堆栈，即使配置开启。
func RecoveryWithOptions(opts mwopts.RecoveryOptions, onPanic PanicHandler) gin.HandlerFunc {
	withStack := opts.EnableStackTrace && !isProductionEnvironment()

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()

			fields := []interface{}{
				"error", fmt.Sprintf("%v", r),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", common.GetRequestID(c.Request.Context()),
			}
			if withStack {
				fields = append(fields, "stack", string(stack))
			}
			logger.Errorw("panic recovered", fields...)

			if onPanic != nil {
				onPanic(c, r, stack)
			}
			if !c.Writer.Written() {
				response.Fail(c, errors.ErrPanic)
			} else {
				c.Abort()
			}
		}()
		c.Next()
	}
}

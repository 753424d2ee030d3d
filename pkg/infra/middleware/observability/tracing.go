package observability

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	ctxlog "github.com/kart-io/askwx/pkg/infra/logger"
	"github.com/kart-io/askwx/pkg/infra/middleware/common"
	"github.com/kart-io/askwx/pkg/infra/middleware/internal/pathutil"
	"github.com/kart-io/askwx/pkg/infra/tracing"
)

// TracerName is the name of the tracer for HTTP middleware.
const TracerName = "github.com/kart-io/askwx/pkg/infra/middleware"

// Tracing 为每个请求创建服务端 span。
// 入站请求中的 W3C trace context 会被提取为父 span。
func Tracing(skipPaths ...string) gin.HandlerFunc {
	skip := pathutil.NewPathMatcher(skipPaths, nil)

	return func(c *gin.Context) {
		req := c.Request
		if skip(req.URL.Path) {
			c.Next()
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		route := c.FullPath()
		if route == "" {
			route = req.URL.Path
		}

		tracer := otel.Tracer(TracerName)
		ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", req.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(req.Method),
				semconv.HTTPRoute(route),
				semconv.HTTPTarget(req.URL.Path),
				semconv.ServerAddress(req.Host),
			),
		)
		defer span.End()

		if ua := req.UserAgent(); ua != "" {
			span.SetAttributes(semconv.UserAgentOriginal(ua))
		}
		if id := common.GetRequestID(ctx); id != "" {
			span.SetAttributes(tracing.String(tracing.HTTPRequestID, id))
		}

		c.Request = req.WithContext(ctxlog.ExtractOpenTelemetryFields(ctx))
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.RecordError(fmt.Errorf("HTTP %d: %s", status, http.StatusText(status)))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

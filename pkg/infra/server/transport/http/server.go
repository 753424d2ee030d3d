// Package http provides the gin based HTTP server.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kart-io/askwx/pkg/infra/middleware"
	"github.com/kart-io/askwx/pkg/infra/middleware/observability"
	"github.com/kart-io/askwx/pkg/infra/middleware/resilience"
	"github.com/kart-io/askwx/pkg/infra/middleware/security"
	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
	options "github.com/kart-io/askwx/pkg/options/server/http"
	apierrors "github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/response"
)

// Options contains HTTP server configuration.
type Options = options.Options

// NewOptions is re-exported from pkg/options/server/http for convenience.
var NewOptions = options.NewOptions

// Server is the HTTP server implementation.
type Server struct {
	opts    *options.Options
	mwOpts  *mwopts.Options
	engine  *gin.Engine
	metrics *observability.MetricsCollector

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a new HTTP server. reg receives the HTTP metrics; the
// metrics middleware is skipped when reg is nil or metrics are disabled.
func NewServer(serverOpts *options.Options, middlewareOpts *mwopts.Options, reg *prometheus.Registry) *Server {
	if serverOpts == nil {
		serverOpts = options.NewOptions()
	}
	if middlewareOpts == nil {
		middlewareOpts = mwopts.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		opts:   serverOpts,
		mwOpts: middlewareOpts,
		engine: engine,
	}
	if reg != nil && !middlewareOpts.DisableMetrics {
		s.metrics = observability.NewMetricsCollector(reg, middlewareOpts.Metrics.Namespace)
	}

	// 中间件必须在注册路由之前应用，gin 的路由组会复制当前的 handlers
	s.applyMiddleware(middlewareOpts)

	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, apierrors.ErrNotFound)
	})
	return s
}

// Name returns the server name.
func (s *Server) Name() string {
	return "http[gin]"
}

// Engine returns the underlying gin.Engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Metrics returns the HTTP metrics collector, nil when metrics are disabled.
func (s *Server) Metrics() *observability.MetricsCollector {
	return s.metrics
}

// applyMiddleware applies configured middleware to the engine.
func (s *Server) applyMiddleware(opts *mwopts.Options) {
	_ = opts.Complete()

	// Recovery 优先级最高，RequestID 为后续中间件提供请求 ID
	s.engine.Use(resilience.RecoveryWithOptions(*opts.Recovery, nil))
	s.engine.Use(middleware.RequestIDWithOptions(*opts.RequestID))
	s.engine.Use(observability.Tracing(opts.Metrics.Path))
	s.engine.Use(observability.LoggerWithOptions(*opts.Logger))

	if s.metrics != nil {
		s.engine.Use(s.metrics.Middleware(opts.Metrics.Path))
	}
	if !opts.DisableCORS {
		s.engine.Use(security.CORSWithOptions(*opts.CORS))
	}
	if !opts.DisableRateLimit {
		s.engine.Use(resilience.RateLimitWithOptions(*opts.RateLimit))
	}
	if !opts.DisableTimeout {
		s.engine.Use(resilience.TimeoutWithOptions(*opts.Timeout))
	}
	if s.opts.MaxBodyBytes > 0 {
		limit := s.opts.MaxBodyBytes
		s.engine.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
			c.Next()
		})
	}
}

// Start binds the listen address and serves in the background.
// Bind errors are returned synchronously.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server exited", "addr", ln.Addr().String(), "error", err.Error())
		}
	}()
	logger.Infow("HTTP server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

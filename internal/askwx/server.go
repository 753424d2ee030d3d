// Package askwxsvc provides the askwx question answering server.
package askwxsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/kart-io/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kart-io/askwx/internal/askwx/biz"
	"github.com/kart-io/askwx/internal/askwx/handler"
	"github.com/kart-io/askwx/internal/askwx/metrics"
	"github.com/kart-io/askwx/internal/askwx/router"
	"github.com/kart-io/askwx/pkg/auth/iam"
	"github.com/kart-io/askwx/pkg/infra/server"
	httpserver "github.com/kart-io/askwx/pkg/infra/server/transport/http"
	"github.com/kart-io/askwx/pkg/infra/tracing"
	"github.com/kart-io/askwx/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/askwx/pkg/llm/watsonx"
	askwxopts "github.com/kart-io/askwx/pkg/options/askwx"
	discoveryopts "github.com/kart-io/askwx/pkg/options/discovery"
	iamopts "github.com/kart-io/askwx/pkg/options/iam"
	llmopts "github.com/kart-io/askwx/pkg/options/llm"
	logopts "github.com/kart-io/askwx/pkg/options/logger"
	middlewareopts "github.com/kart-io/askwx/pkg/options/middleware"
	httpopts "github.com/kart-io/askwx/pkg/options/server/http"
	tracingopts "github.com/kart-io/askwx/pkg/options/tracing"
	"github.com/kart-io/askwx/pkg/search/discovery"
)

// Name is the name of the application.
const Name = "askwx"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions       *httpopts.Options
	LogOptions        *logopts.Options
	TracingOptions    *tracingopts.Options
	MiddlewareOptions *middlewareopts.Options
	DiscoveryOptions  *discoveryopts.Options
	IAMOptions        *iamopts.Options
	LLMOptions        *llmopts.ProviderOptions
	AskWXOptions      *askwxopts.Options
	ShutdownTimeout   time.Duration
}

// Server represents the askwx server.
type Server struct {
	srv     *server.Manager
	tracing *tracing.Provider
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", version.Get().GitVersion)
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting askwx service...")

	// 2. 初始化链路追踪
	tp, err := tracing.NewProvider(ctx, cfg.TracingOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	logger.Infow("Tracing initialized",
		"enabled", cfg.TracingOptions.Enabled,
		"exporter", cfg.TracingOptions.ExporterType,
	)

	// 3. 初始化指标注册表
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	askMetrics := metrics.NewAskMetrics(reg, cfg.MiddlewareOptions.Metrics.Namespace)

	// 4. 初始化 IAM 与检索客户端
	iamClient := iam.NewClient(cfg.IAMOptions)
	searcher := discovery.NewClient(cfg.DiscoveryOptions, iam.NewCachedProvider(iamClient))
	logger.Infow("Discovery client initialized",
		"project_id", cfg.DiscoveryOptions.ProjectID,
		"count", cfg.DiscoveryOptions.Count,
	)

	// 5. 初始化 LLM 供应商
	generator, err := llm.NewGenerator(cfg.LLMOptions.Provider, cfg.LLMOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm provider: %w", err)
	}
	logger.Infow("LLM provider initialized",
		"provider", cfg.LLMOptions.Provider,
		"model", cfg.LLMOptions.Model,
	)

	var generationTokens iam.TokenProvider = iamClient
	if cfg.IAMOptions.ReuseToken {
		generationTokens = iam.NewCachedProvider(iamClient)
	}

	// 6. 初始化 Biz 层
	params := llm.Parameters{
		DecodingMethod: cfg.LLMOptions.Parameters.DecodingMethod,
		MinNewTokens:   cfg.LLMOptions.Parameters.MinNewTokens,
		MaxNewTokens:   cfg.LLMOptions.Parameters.MaxNewTokens,
	}
	askService := biz.NewAskService(
		biz.NewPassageCollector(searcher),
		biz.NewPromptBuilder(cfg.AskWXOptions),
		biz.NewAnswerGenerator(generationTokens, generator, params),
		askMetrics,
	)
	logger.Infow("Ask service initialized", "iam.reuse_token", cfg.IAMOptions.ReuseToken)

	// 7. 初始化 HTTP 服务器并注册路由
	httpServer := httpserver.NewServer(cfg.HTTPOptions, cfg.MiddlewareOptions, reg)
	router.Register(httpServer.Engine(), handler.NewAskHandler(askService), httpServer.Metrics(), cfg.MiddlewareOptions.Metrics.Path)

	logger.Info("askwx service is ready")
	return &Server{
		srv:     server.NewManager(cfg.ShutdownTimeout, httpServer),
		tracing: tp,
	}, nil
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("failed to shutdown tracing", "error", err.Error())
		}
	}()
	return s.srv.Run(ctx)
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Listen: %s\n", cfg.HTTPOptions.Addr)
	fmt.Printf("  LLM: %s (%s)\n", cfg.LLMOptions.Provider, cfg.LLMOptions.Model)
	fmt.Printf("  Tracing: %v\n", cfg.TracingOptions.Enabled)
}

// Package middleware provides middleware configuration options.
package middleware

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/askwx/pkg/options"
)

// Options 聚合所有 HTTP 中间件配置。
// Recovery, RequestID 与 Logger 始终启用；其余中间件通过 Disable* 字段控制。
type Options struct {
	Recovery  *RecoveryOptions  `json:"recovery" mapstructure:"recovery"`
	RequestID *RequestIDOptions `json:"request-id" mapstructure:"request-id"`
	Logger    *LoggerOptions    `json:"logger" mapstructure:"logger"`
	CORS      *CORSOptions      `json:"cors" mapstructure:"cors"`
	Timeout   *TimeoutOptions   `json:"timeout" mapstructure:"timeout"`
	RateLimit *RateLimitOptions `json:"rate-limit" mapstructure:"rate-limit"`
	Metrics   *MetricsOptions   `json:"metrics" mapstructure:"metrics"`

	DisableCORS      bool `json:"disable-cors" mapstructure:"disable-cors"`
	DisableTimeout   bool `json:"disable-timeout" mapstructure:"disable-timeout"`
	DisableRateLimit bool `json:"disable-rate-limit" mapstructure:"disable-rate-limit"`
	DisableMetrics   bool `json:"disable-metrics" mapstructure:"disable-metrics"`
}

// NewOptions 创建默认中间件选项。
// 限流默认关闭，其余默认开启。
func NewOptions() *Options {
	return &Options{
		Recovery:         NewRecoveryOptions(),
		RequestID:        NewRequestIDOptions(),
		Logger:           NewLoggerOptions(),
		CORS:             NewCORSOptions(),
		Timeout:          NewTimeoutOptions(),
		RateLimit:        NewRateLimitOptions(),
		Metrics:          NewMetricsOptions(),
		DisableRateLimit: true,
	}
}

// AddFlags adds flags for every middleware to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware."
	fs.BoolVar(&o.DisableCORS, p+"disable-cors", o.DisableCORS, "Disable the CORS middleware.")
	fs.BoolVar(&o.DisableTimeout, p+"disable-timeout", o.DisableTimeout, "Disable the request timeout middleware.")
	fs.BoolVar(&o.DisableRateLimit, p+"disable-rate-limit", o.DisableRateLimit, "Disable the inbound rate limiter.")
	fs.BoolVar(&o.DisableMetrics, p+"disable-metrics", o.DisableMetrics, "Disable the Prometheus metrics endpoint.")

	o.Recovery.AddFlags(fs, prefixes...)
	o.RequestID.AddFlags(fs, prefixes...)
	o.Logger.AddFlags(fs, prefixes...)
	o.CORS.AddFlags(fs, prefixes...)
	o.Timeout.AddFlags(fs, prefixes...)
	o.RateLimit.AddFlags(fs, prefixes...)
	o.Metrics.AddFlags(fs, prefixes...)
}

// Validate validates the enabled middleware options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	errs = append(errs, o.RequestID.Validate()...)
	if !o.DisableCORS {
		errs = append(errs, o.CORS.Validate()...)
	}
	if !o.DisableTimeout {
		errs = append(errs, o.Timeout.Validate()...)
	}
	if !o.DisableRateLimit {
		errs = append(errs, o.RateLimit.Validate()...)
	}
	if !o.DisableMetrics {
		errs = append(errs, o.Metrics.Validate()...)
	}
	return errs
}

// Complete completes the middleware options with defaults.
func (o *Options) Complete() error {
	return nil
}

// RecoveryOptions defines recovery middleware options.
type RecoveryOptions struct {
	EnableStackTrace bool `json:"enable-stack-trace" mapstructure:"enable-stack-trace"`
}

// NewRecoveryOptions creates default recovery options.
func NewRecoveryOptions() *RecoveryOptions {
	return &RecoveryOptions{}
}

// AddFlags adds flags for recovery options.
func (o *RecoveryOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.EnableStackTrace, options.Join(prefixes...)+"middleware.recovery.enable-stack-trace", o.EnableStackTrace, "Log the stack trace of recovered panics.")
}

// RequestIDOptions defines request ID middleware options.
type RequestIDOptions struct {
	Header string `json:"header" mapstructure:"header"`
	// GeneratorType 指定 ID 生成器类型: "random"/"hex" (32 字符) 或 "ulid" (26 字符，时间可排序)
	GeneratorType string `json:"generator-type" mapstructure:"generator-type"`
}

// NewRequestIDOptions creates default request ID middleware options.
func NewRequestIDOptions() *RequestIDOptions {
	return &RequestIDOptions{
		Header:        "X-Request-ID",
		GeneratorType: "ulid",
	}
}

// AddFlags adds flags for request ID options to the specified FlagSet.
func (o *RequestIDOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.request-id."
	fs.StringVar(&o.Header, p+"header", o.Header, "Request ID header name.")
	fs.StringVar(&o.GeneratorType, p+"generator-type", o.GeneratorType, "ID generator type: random, hex or ulid.")
}

// Validate validates the request ID options.
func (o *RequestIDOptions) Validate() []error {
	var errs []error
	if o.Header == "" {
		errs = append(errs, errors.New("request ID header name is required"))
	}
	switch o.GeneratorType {
	case "", "random", "hex", "ulid":
	default:
		errs = append(errs, errors.New("invalid generator type: must be 'random', 'hex', or 'ulid'"))
	}
	return errs
}

// LoggerOptions defines logger middleware options.
type LoggerOptions struct {
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewLoggerOptions creates default logger middleware options.
func NewLoggerOptions() *LoggerOptions {
	return &LoggerOptions{
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// AddFlags adds flags for logger options to the specified FlagSet.
func (o *LoggerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.SkipPaths, options.Join(prefixes...)+"middleware.logger.skip-paths", o.SkipPaths, "Paths to skip logging.")
}

// CORSOptions defines CORS middleware options.
type CORSOptions struct {
	AllowOrigins     []string `json:"allow-origins" mapstructure:"allow-origins"`
	AllowMethods     []string `json:"allow-methods" mapstructure:"allow-methods"`
	AllowHeaders     []string `json:"allow-headers" mapstructure:"allow-headers"`
	AllowCredentials bool     `json:"allow-credentials" mapstructure:"allow-credentials"`
	MaxAge           int      `json:"max-age" mapstructure:"max-age"`
}

// NewCORSOptions creates default CORS options.
func NewCORSOptions() *CORSOptions {
	return &CORSOptions{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		MaxAge:       86400,
	}
}

// AddFlags adds flags for CORS options to the specified FlagSet.
func (o *CORSOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.cors."
	fs.StringSliceVar(&o.AllowOrigins, p+"allow-origins", o.AllowOrigins, "CORS allowed origins.")
	fs.StringSliceVar(&o.AllowMethods, p+"allow-methods", o.AllowMethods, "CORS allowed methods.")
	fs.StringSliceVar(&o.AllowHeaders, p+"allow-headers", o.AllowHeaders, "CORS allowed headers.")
	fs.BoolVar(&o.AllowCredentials, p+"allow-credentials", o.AllowCredentials, "CORS allow credentials.")
	fs.IntVar(&o.MaxAge, p+"max-age", o.MaxAge, "CORS preflight max age.")
}

// Validate validates the CORS options.
func (o *CORSOptions) Validate() []error {
	var errs []error
	if len(o.AllowOrigins) == 0 {
		errs = append(errs, errors.New("CORS: AllowOrigins must be explicitly configured, empty list not allowed"))
	}
	for _, origin := range o.AllowOrigins {
		if origin == "*" && o.AllowCredentials {
			errs = append(errs, errors.New("CORS: wildcard origin cannot be combined with allow-credentials"))
			break
		}
	}
	return errs
}

// TimeoutOptions defines timeout middleware options.
type TimeoutOptions struct {
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	SkipPaths []string      `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewTimeoutOptions creates default timeout options.
func NewTimeoutOptions() *TimeoutOptions {
	return &TimeoutOptions{
		Timeout:   110 * time.Second,
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// AddFlags adds flags for timeout options to the specified FlagSet.
func (o *TimeoutOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.timeout."
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Overall deadline for one request.")
	fs.StringSliceVar(&o.SkipPaths, p+"skip-paths", o.SkipPaths, "Paths without a request deadline.")
}

// Validate validates the timeout options.
func (o *TimeoutOptions) Validate() []error {
	if o.Timeout <= 0 {
		return []error{errors.New("middleware.timeout.timeout must be positive")}
	}
	return nil
}

// RateLimitOptions 定义限流中间件的配置选项。
type RateLimitOptions struct {
	// Limit 是时间窗口内允许的最大请求数。
	Limit int `json:"limit" mapstructure:"limit"`

	// Window 是限流时间窗口（秒）。
	Window int `json:"window" mapstructure:"window"`

	// Burst 是令牌桶容量，为 0 时等于 Limit。
	Burst int `json:"burst" mapstructure:"burst"`

	// SkipPaths 是跳过限流的路径列表。
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewRateLimitOptions 创建默认的限流选项。
func NewRateLimitOptions() *RateLimitOptions {
	return &RateLimitOptions{
		Limit:     60,
		Window:    60,
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// AddFlags 为限流选项添加标志到指定的 FlagSet。
func (o *RateLimitOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.rate-limit."
	fs.IntVar(&o.Limit, p+"limit", o.Limit, "Maximum number of requests allowed within the time window.")
	fs.IntVar(&o.Window, p+"window", o.Window, "Time window duration for rate limiting (seconds).")
	fs.IntVar(&o.Burst, p+"burst", o.Burst, "Maximum burst size, defaults to limit.")
	fs.StringSliceVar(&o.SkipPaths, p+"skip-paths", o.SkipPaths, "List of paths to skip rate limiting.")
}

// Validate 验证限流选项。
func (o *RateLimitOptions) Validate() []error {
	var errs []error
	if o.Limit <= 0 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	if o.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if o.Burst < 0 {
		errs = append(errs, errors.New("rate limit burst cannot be negative"))
	}
	return errs
}

// GetWindow 返回时间窗口的 time.Duration 表示。
func (o *RateLimitOptions) GetWindow() time.Duration {
	return time.Duration(o.Window) * time.Second
}

// MetricsOptions defines the Prometheus endpoint options.
type MetricsOptions struct {
	Path      string `json:"path" mapstructure:"path"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

// NewMetricsOptions creates default metrics options.
func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{
		Path:      "/metrics",
		Namespace: "askwx",
	}
}

// AddFlags adds flags for metrics options to the specified FlagSet.
func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.metrics."
	fs.StringVar(&o.Path, p+"path", o.Path, "HTTP path of the Prometheus endpoint.")
	fs.StringVar(&o.Namespace, p+"namespace", o.Namespace, "Prometheus metric namespace.")
}

// Validate validates the metrics options.
func (o *MetricsOptions) Validate() []error {
	var errs []error
	if o.Path == "" || o.Path[0] != '/' {
		errs = append(errs, errors.New("middleware.metrics.path must start with '/'"))
	}
	if o.Namespace == "" {
		errs = append(errs, errors.New("middleware.metrics.namespace cannot be empty"))
	}
	return errs
}

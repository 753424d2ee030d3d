// Package options contains flags and options for initializing the askwx server.
package options

import (
	"fmt"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	askwxsvc "github.com/kart-io/askwx/internal/askwx"
	cliflag "github.com/kart-io/askwx/pkg/app/cliflag"
	askwxopts "github.com/kart-io/askwx/pkg/options/askwx"
	discoveryopts "github.com/kart-io/askwx/pkg/options/discovery"
	iamopts "github.com/kart-io/askwx/pkg/options/iam"
	llmopts "github.com/kart-io/askwx/pkg/options/llm"
	logopts "github.com/kart-io/askwx/pkg/options/logger"
	middlewareopts "github.com/kart-io/askwx/pkg/options/middleware"
	httpopts "github.com/kart-io/askwx/pkg/options/server/http"
	tracingopts "github.com/kart-io/askwx/pkg/options/tracing"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// TracingOptions contains OpenTelemetry configuration.
	TracingOptions *tracingopts.Options `json:"tracing" mapstructure:"tracing"`

	// MiddlewareOptions contains HTTP middleware configuration.
	MiddlewareOptions *middlewareopts.Options `json:"middleware" mapstructure:"middleware"`

	// DiscoveryOptions contains passage retrieval configuration.
	DiscoveryOptions *discoveryopts.Options `json:"discovery" mapstructure:"discovery"`

	// IAMOptions contains access token configuration.
	IAMOptions *iamopts.Options `json:"iam" mapstructure:"iam"`

	// LLMOptions contains text generation configuration.
	LLMOptions *llmopts.ProviderOptions `json:"llm" mapstructure:"llm"`

	// AskWXOptions contains prompt configuration.
	AskWXOptions *askwxopts.Options `json:"askwx" mapstructure:"askwx"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:       httpopts.NewOptions(),
		LogOptions:        logopts.NewOptions(),
		TracingOptions:    tracingopts.NewOptions(),
		MiddlewareOptions: middlewareopts.NewOptions(),
		DiscoveryOptions:  discoveryopts.NewOptions(),
		IAMOptions:        iamopts.NewOptions(),
		LLMOptions:        llmopts.NewProviderOptions(),
		AskWXOptions:      askwxopts.NewOptions(),
		ShutdownTimeout:   30 * time.Second,
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.TracingOptions.AddFlags(fss.FlagSet("tracing"))
	o.MiddlewareOptions.AddFlags(fss.FlagSet("middleware"))
	o.DiscoveryOptions.AddFlags(fss.FlagSet("discovery"))
	o.IAMOptions.AddFlags(fss.FlagSet("iam"))
	o.LLMOptions.AddFlags(fss.FlagSet("llm"))
	o.AskWXOptions.AddFlags(fss.FlagSet("askwx"))

	// misc flags
	fs := fss.FlagSet("misc")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.TracingOptions.Complete(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	if err := o.MiddlewareOptions.Complete(); err != nil {
		return fmt.Errorf("middleware: %w", err)
	}
	if err := o.DiscoveryOptions.Complete(); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	if err := o.IAMOptions.Complete(); err != nil {
		return fmt.Errorf("iam: %w", err)
	}
	if err := o.LLMOptions.Complete(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := o.AskWXOptions.Complete(); err != nil {
		return fmt.Errorf("askwx: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.TracingOptions.Validate()...)
	errs = append(errs, o.MiddlewareOptions.Validate()...)
	errs = append(errs, o.DiscoveryOptions.Validate()...)
	errs = append(errs, o.IAMOptions.Validate()...)
	errs = append(errs, o.LLMOptions.Validate()...)
	errs = append(errs, o.AskWXOptions.Validate()...)
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive"))
	}

	return utilerrors.NewAggregate(errs)
}

// Config builds an askwxsvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*askwxsvc.Config, error) {
	return &askwxsvc.Config{
		HTTPOptions:       o.HTTPOptions,
		LogOptions:        o.LogOptions,
		TracingOptions:    o.TracingOptions,
		MiddlewareOptions: o.MiddlewareOptions,
		DiscoveryOptions:  o.DiscoveryOptions,
		IAMOptions:        o.IAMOptions,
		LLMOptions:        o.LLMOptions,
		AskWXOptions:      o.AskWXOptions,
		ShutdownTimeout:   o.ShutdownTimeout,
	}, nil
}

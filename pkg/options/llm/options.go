// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/askwx/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 定义 LLM 供应商配置。
type ProviderOptions struct {
	// Provider 供应商名称。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// ProjectID watsonx 项目 ID。
	ProjectID string `json:"project-id" mapstructure:"project-id"`

	// APIVersion 接口版本日期。
	APIVersion string `json:"api-version" mapstructure:"api-version"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Parameters 生成参数。
	Parameters *GenerationOptions `json:"parameters" mapstructure:"parameters"`
}

// GenerationOptions 固定的解码参数。
type GenerationOptions struct {
	DecodingMethod string `json:"decoding-method" mapstructure:"decoding-method"`
	MinNewTokens   int    `json:"min-new-tokens" mapstructure:"min-new-tokens"`
	MaxNewTokens   int    `json:"max-new-tokens" mapstructure:"max-new-tokens"`
}

// NewProviderOptions 创建默认 LLM 供应商配置。
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "watsonx",
		BaseURL:    "https://us-south.ml.cloud.ibm.com",
		Model:      "google/flan-ul2",
		APIVersion: "2023-05-29",
		Timeout:    60 * time.Second,
		Parameters: &GenerationOptions{
			DecodingMethod: "greedy",
			MinNewTokens:   1,
			MaxNewTokens:   100,
		},
	}
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"model":       o.Model,
		"project_id":  o.ProjectID,
		"api_version": o.APIVersion,
		"timeout":     o.Timeout,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "llm."
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "LLM provider.")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.Model, p+"model", o.Model, "LLM model name.")
	fs.StringVar(&o.ProjectID, p+"project-id", o.ProjectID, "watsonx project ID. Falls back to $WATSONX_PROJECTID.")
	fs.StringVar(&o.APIVersion, p+"api-version", o.APIVersion, "API version date.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "LLM request timeout.")

	if o.Parameters == nil {
		o.Parameters = NewProviderOptions().Parameters
	}
	fs.StringVar(&o.Parameters.DecodingMethod, p+"parameters.decoding-method", o.Parameters.DecodingMethod, "Decoding method (greedy|sample).")
	fs.IntVar(&o.Parameters.MinNewTokens, p+"parameters.min-new-tokens", o.Parameters.MinNewTokens, "Minimum number of generated tokens.")
	fs.IntVar(&o.Parameters.MaxNewTokens, p+"parameters.max-new-tokens", o.Parameters.MaxNewTokens, "Maximum number of generated tokens.")
}

// Complete fills the project from the legacy environment variable.
func (o *ProviderOptions) Complete() error {
	options.FromEnv(&o.ProjectID, "WATSONX_PROJECTID")
	if o.Parameters == nil {
		o.Parameters = NewProviderOptions().Parameters
	}
	return nil
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("llm.provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("llm.base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("llm.model is required"))
	}
	if o.ProjectID == "" {
		errs = append(errs, fmt.Errorf("llm.project-id is required (or set WATSONX_PROJECTID)"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must be positive"))
	}
	if p := o.Parameters; p != nil {
		switch p.DecodingMethod {
		case "greedy", "sample":
		default:
			errs = append(errs, fmt.Errorf("llm.parameters.decoding-method must be greedy or sample"))
		}
		if p.MinNewTokens < 0 || p.MaxNewTokens < 1 || p.MinNewTokens > p.MaxNewTokens {
			errs = append(errs, fmt.Errorf("llm.parameters require 0 <= min-new-tokens <= max-new-tokens and max-new-tokens >= 1"))
		}
	}
	return errs
}

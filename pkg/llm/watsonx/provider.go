// Package watsonx 提供 IBM watsonx.ai 文本生成供应商实现。
//
// 基本用法示例：
//
//	import _ "github.com/kart-io/askwx/pkg/llm/watsonx"
//
//	gen, err := llm.NewGenerator("watsonx", map[string]any{
//	    "project_id": "your-project-id",
//	})
//	resp, err := gen.GenerateText(ctx, &llm.GenerationRequest{
//	    Prompt:      prompt,
//	    AccessToken: token,
//	    Parameters:  llm.Parameters{DecodingMethod: "greedy", MinNewTokens: 1, MaxNewTokens: 100},
//	})
//
// 请求中不携带 moderations 配置，即关闭 guardrails。
package watsonx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kart-io/askwx/pkg/llm"
	"github.com/kart-io/askwx/pkg/utils/httpclient"
	"github.com/kart-io/askwx/pkg/utils/json"
)

// ProviderName 是 watsonx 供应商的名称标识符
const ProviderName = "watsonx"

func init() {
	llm.RegisterGenerator(ProviderName, NewProvider)
}

// Config watsonx 供应商配置。
type Config struct {
	// BaseURL 区域地址，例如 https://us-south.ml.cloud.ibm.com。
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Model 模型 ID。
	Model string `json:"model" mapstructure:"model"`

	// ProjectID watsonx 项目 ID。
	ProjectID string `json:"project_id" mapstructure:"project_id"`

	// APIVersion 接口版本日期。
	APIVersion string `json:"api_version" mapstructure:"api_version"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://us-south.ml.cloud.ibm.com",
		Model:      "google/flan-ul2",
		APIVersion: "2023-05-29",
		Timeout:    60 * time.Second,
	}
}

// Provider watsonx 供应商实现。
type Provider struct {
	config   *Config
	endpoint string
	client   *httpclient.Client
}

var _ llm.TextGenerator = (*Provider)(nil)

// NewProvider 从配置 map 创建 watsonx 供应商。
func NewProvider(configMap map[string]any) (llm.TextGenerator, error) {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["model"].(string); ok && v != "" {
		cfg.Model = v
	}
	if v, ok := configMap["project_id"].(string); ok && v != "" {
		cfg.ProjectID = v
	}
	if v, ok := configMap["api_version"].(string); ok && v != "" {
		cfg.APIVersion = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("watsonx: project_id 是必需的")
	}
	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig 使用结构化配置创建 watsonx 供应商。
func NewProviderWithConfig(cfg *Config) *Provider {
	return &Provider{
		config: cfg,
		endpoint: fmt.Sprintf("%s/ml/v1/text/generation?version=%s",
			strings.TrimRight(cfg.BaseURL, "/"), url.QueryEscape(cfg.APIVersion)),
		// 生成请求只发送一次，失败直接返回
		client: httpclient.NewClient(cfg.Timeout, 0),
	}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

type generationParameters struct {
	DecodingMethod string `json:"decoding_method,omitempty"`
	MinNewTokens   int    `json:"min_new_tokens"`
	MaxNewTokens   int    `json:"max_new_tokens,omitempty"`
}

type generationRequest struct {
	ModelID    string               `json:"model_id"`
	Input      string               `json:"input"`
	ProjectID  string               `json:"project_id"`
	Parameters generationParameters `json:"parameters"`
}

// GenerateText 调用 text generation 接口。
func (p *Provider) GenerateText(ctx context.Context, req *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	if req.AccessToken == "" {
		return nil, errors.New("watsonx: access token is required")
	}

	body, err := json.Marshal(generationRequest{
		ModelID:   p.config.Model,
		Input:     req.Prompt,
		ProjectID: p.config.ProjectID,
		Parameters: generationParameters{
			DecodingMethod: req.Parameters.DecodingMethod,
			MinNewTokens:   req.Parameters.MinNewTokens,
			MaxNewTokens:   req.Parameters.MaxNewTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)

	raw, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("watsonx: generate: %w", err)
	}

	resp := &llm.GenerationResponse{Raw: raw}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, fmt.Errorf("watsonx: decode response: %w", err)
	}
	return resp, nil
}

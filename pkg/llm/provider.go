// Package llm 提供统一的文本生成供应商抽象层。
package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// TextGenerator 定义单轮文本生成供应商接口。
type TextGenerator interface {
	// GenerateText 根据提示生成文本。返回 error 仅表示调用失败；
	// 响应中缺少生成结果不是错误，由调用方通过 FirstText 判断。
	GenerateText(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)

	// Name 返回供应商名称。
	Name() string
}

// Parameters 解码参数。
type Parameters struct {
	DecodingMethod string
	MinNewTokens   int
	MaxNewTokens   int
}

// GenerationRequest 一次生成请求。
type GenerationRequest struct {
	Prompt      string
	Parameters  Parameters
	AccessToken string
}

// GenerationResult 单条生成结果。GeneratedText 为 nil 表示响应中缺少该字段。
type GenerationResult struct {
	GeneratedText       *string `json:"generated_text,omitempty"`
	GeneratedTokenCount int     `json:"generated_token_count,omitempty"`
	InputTokenCount     int     `json:"input_token_count,omitempty"`
	StopReason          string  `json:"stop_reason,omitempty"`
}

// GenerationResponse 生成响应。Raw 保留原始响应体，用于排查。
type GenerationResponse struct {
	ModelID string             `json:"model_id,omitempty"`
	Results []GenerationResult `json:"results,omitempty"`
	Raw     []byte             `json:"-"`
}

// FirstText 返回第一条结果的 generated_text；结果或字段缺失时 ok 为 false。
func (r *GenerationResponse) FirstText() (text string, ok bool) {
	if r == nil || len(r.Results) == 0 || r.Results[0].GeneratedText == nil {
		return "", false
	}
	return *r.Results[0].GeneratedText, true
}

// GeneratorFactory 供应商工厂函数类型。
type GeneratorFactory func(config map[string]any) (TextGenerator, error)

var registry = &generatorRegistry{
	factories: make(map[string]GeneratorFactory),
}

type generatorRegistry struct {
	mu        sync.RWMutex
	factories map[string]GeneratorFactory
}

// RegisterGenerator 注册供应商工厂。
func RegisterGenerator(name string, factory GeneratorFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[name] = factory
}

// NewGenerator 根据名称创建供应商实例。
func NewGenerator(name string, config map[string]any) (TextGenerator, error) {
	registry.mu.RLock()
	factory, ok := registry.factories[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return factory(config)
}

// ListProviders 列出所有已注册的供应商名称。
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

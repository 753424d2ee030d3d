package biz

import (
	"strings"

	askwxopts "github.com/kart-io/askwx/pkg/options/askwx"
)

// PromptBuilder 将上下文与问题填入固定模板。
type PromptBuilder struct {
	template  string
	separator string
}

// NewPromptBuilder 创建 PromptBuilder。opts 为 nil 时使用默认模板。
func NewPromptBuilder(opts *askwxopts.Options) *PromptBuilder {
	if opts == nil {
		opts = askwxopts.NewOptions()
	}
	b := &PromptBuilder{template: opts.PromptTemplate, separator: opts.DocumentSeparator}
	if b.template == "" {
		b.template = askwxopts.DefaultPromptTemplate
	}
	return b
}

// Build 生成提示词。替换只扫描一次模板，问题或段落中出现的占位符文本不会被再次替换。
func (b *PromptBuilder) Build(cc CleanedContext, question string) string {
	r := strings.NewReplacer(
		askwxopts.ContextPlaceholder, strings.Join(cc, b.separator),
		askwxopts.QuestionPlaceholder, question,
	)
	return r.Replace(b.template)
}

package biz

import (
	"context"
	"strings"

	ctxlog "github.com/kart-io/askwx/pkg/infra/logger"
	"github.com/kart-io/askwx/pkg/search"
	"github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/httpclient"
)

// CleanedContext 每个文档一条清洗后的文本，顺序与检索结果一致。
type CleanedContext []string

var highlightReplacer = strings.NewReplacer("<em>", "", "</em>", "")

// CleanPassage 去除检索高亮标记 <em> 与 </em>，其余内容保持不变。
// 重复替换直到不再包含标记，例如 "<e<em>m>" 也会被完全清除。
func CleanPassage(s string) string {
	for {
		out := highlightReplacer.Replace(s)
		if out == s {
			return out
		}
		s = out
	}
}

// PassageCollector 检索并整理段落。
type PassageCollector struct {
	searcher search.Searcher
}

// NewPassageCollector 创建 PassageCollector。
func NewPassageCollector(s search.Searcher) *PassageCollector {
	return &PassageCollector{searcher: s}
}

// Collect 检索问题相关的文档，返回每个文档清洗并用换行拼接后的段落。
// 没有检索到文档时返回空上下文，不视为错误。
func (c *PassageCollector) Collect(ctx context.Context, question string) (CleanedContext, error) {
	result, err := c.searcher.Search(ctx, question)
	if err == nil && result == nil {
		err = search.ErrMalformedResponse
	}
	if err != nil {
		ctxlog.GetLogger(ctx).Errorw("passage retrieval failed", "error", err.Error())
		if httpclient.IsTimeout(err) {
			return nil, errors.ErrAskTimeout.WithCauseMessage(err)
		}
		return nil, errors.ErrAskRetrieval.WithCauseMessage(err)
	}

	cleaned := make(CleanedContext, 0, len(result.Documents))
	for _, doc := range result.Documents {
		passages := make([]string, len(doc.Passages))
		for i, p := range doc.Passages {
			passages[i] = CleanPassage(p)
		}
		cleaned = append(cleaned, strings.Join(passages, "\n"))
	}
	return cleaned, nil
}

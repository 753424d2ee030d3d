package biz

import (
	"context"

	"github.com/kart-io/askwx/pkg/auth/iam"
	ctxlog "github.com/kart-io/askwx/pkg/infra/logger"
	"github.com/kart-io/askwx/pkg/llm"
	"github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/httpclient"
	"github.com/kart-io/askwx/pkg/utils/json"
)

// AnswerGenerator 调用生成后端并提取答案文本。
type AnswerGenerator struct {
	tokens    iam.TokenProvider
	generator llm.TextGenerator
	params    llm.Parameters
}

// NewAnswerGenerator 创建 AnswerGenerator。
func NewAnswerGenerator(tokens iam.TokenProvider, generator llm.TextGenerator, params llm.Parameters) *AnswerGenerator {
	return &AnswerGenerator{tokens: tokens, generator: generator, params: params}
}

// Generate 为 prompt 生成答案。
//
// 令牌获取失败返回 ErrAskAuth，且不会调用生成后端；生成调用失败返回
// ErrAskGeneration (超时为 ErrAskTimeout)。响应中没有 results[0].generated_text
// 时返回空字符串且不报错。
func (g *AnswerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	tok, err := g.tokens.Token(ctx)
	if err == nil && (tok == nil || tok.AccessToken == "") {
		err = iam.ErrEmptyToken
	}
	if err != nil {
		ctxlog.GetLogger(ctx).Errorw("failed to obtain access token", "error", err.Error())
		return "", errors.ErrAskAuth.WithCause(err)
	}

	resp, err := g.generator.GenerateText(ctx, &llm.GenerationRequest{
		Prompt:      prompt,
		Parameters:  g.params,
		AccessToken: tok.AccessToken,
	})
	if err != nil {
		ctxlog.GetLogger(ctx).Errorw("text generation failed", "provider", g.generator.Name(), "error", err.Error())
		if httpclient.IsTimeout(err) {
			return "", errors.ErrAskTimeout.WithCauseMessage(err)
		}
		return "", errors.ErrAskGeneration.WithCauseMessage(err)
	}

	text, ok := resp.FirstText()
	if !ok {
		var raw string
		if resp != nil {
			raw = json.Pretty(resp.Raw)
		}
		ctxlog.GetLogger(ctx).Warnw("generation response has no generated_text", "provider", g.generator.Name(), "response", raw)
		return "", nil
	}
	return text, nil
}

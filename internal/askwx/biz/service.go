package biz

import (
	"context"
	"time"

	"github.com/kart-io/askwx/internal/askwx/metrics"
	ctxlog "github.com/kart-io/askwx/pkg/infra/logger"
	"github.com/kart-io/askwx/pkg/infra/tracing"
	"github.com/kart-io/askwx/pkg/utils/errors"
)

// TracerName is the tracer used for pipeline stage spans.
const TracerName = "github.com/kart-io/askwx/internal/askwx/biz"

// Service 定义问答服务接口。
type Service interface {
	// Answer 回答一个问题。返回的 error 总是 *errors.Errno。
	Answer(ctx context.Context, question string) (string, error)
}

// AskService 依次执行检索、提示构建与生成。
type AskService struct {
	collector *PassageCollector
	builder   *PromptBuilder
	generator *AnswerGenerator
	metrics   *metrics.AskMetrics
}

var _ Service = (*AskService)(nil)

// NewAskService 创建 AskService。m 可以为 nil。
func NewAskService(c *PassageCollector, b *PromptBuilder, g *AnswerGenerator, m *metrics.AskMetrics) *AskService {
	return &AskService{collector: c, builder: b, generator: g, metrics: m}
}

// Answer 回答一个问题。
//
// 每个阶段只执行一次，不重试；检索失败时不会进入生成阶段。
// 上下文为空或答案为空都不是错误。
func (s *AskService) Answer(ctx context.Context, question string) (answer string, err error) {
	ctx, span := tracing.StartSpan(ctx, TracerName, "askwx.Answer")
	defer span.End()
	span.SetAttributes(tracing.Int(tracing.AskQuestionLength, len(question)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequest(err)
		if err != nil {
			tracing.RecordError(ctx, err)
			ctxlog.GetLogger(ctx).Warnw("question failed",
				"code", errors.GetCode(err),
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return
		}
		tracing.SetSpanOK(ctx)
		ctxlog.GetLogger(ctx).Infow("question answered",
			"answer_length", len(answer),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}()

	var cc CleanedContext
	err = s.stage(ctx, metrics.StageRetrieve, func(ctx context.Context) error {
		var err error
		cc, err = s.collector.Collect(ctx, question)
		return err
	})
	if err != nil {
		return "", err
	}
	s.metrics.ObserveDocuments(len(cc))
	span.SetAttributes(tracing.Int(tracing.AskDocumentCount, len(cc)))

	var prompt string
	_ = s.stage(ctx, metrics.StageAugment, func(context.Context) error {
		prompt = s.builder.Build(cc, question)
		return nil
	})
	span.SetAttributes(tracing.Int(tracing.AskPromptLength, len(prompt)))

	err = s.stage(ctx, metrics.StageGenerate, func(ctx context.Context) error {
		var err error
		answer, err = s.generator.Generate(ctx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}

	if answer == "" {
		s.metrics.RecordEmptyAnswer()
	}
	span.SetAttributes(tracing.Int(tracing.AskAnswerLength, len(answer)))
	return answer, nil
}

// stage 在独立 span 中执行一个阶段，并记录耗时与日志。
func (s *AskService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, TracerName, "askwx."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveStage(name, elapsed, err)

	if err != nil {
		tracing.RecordError(ctx, err)
		span.SetAttributes(tracing.Int(tracing.ErrorCode, errors.GetCode(err)))
		return err
	}
	ctxlog.GetLogger(ctx).Debugw("stage completed",
		"stage", name,
		"latency_ms", elapsed.Milliseconds(),
	)
	return nil
}

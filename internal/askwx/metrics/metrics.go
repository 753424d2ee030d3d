// Package metrics 提供 askwx 问答流水线的业务指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kart-io/askwx/pkg/utils/errors"
)

// 流水线阶段名称。
const (
	StageRetrieve = "retrieve"
	StageAugment  = "augment"
	StageGenerate = "generate"
)

// 请求结果标签。
const (
	OutcomeSuccess        = "success"
	OutcomeClientError    = "client_error"
	OutcomeRetrievalError = "retrieval_error"
	OutcomeAuthError      = "auth_error"
	OutcomeBackendError   = "backend_error"
	OutcomeTimeout        = "timeout"
	OutcomeInternalError  = "internal_error"
)

// AskMetrics 问答业务指标。nil 值可安全使用，所有方法均为空操作。
type AskMetrics struct {
	requestsTotal *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	emptyAnswers  prometheus.Counter
	documents     prometheus.Histogram
}

// NewAskMetrics 在 reg 上注册问答指标。
func NewAskMetrics(reg prometheus.Registerer, namespace string) *AskMetrics {
	factory := promauto.With(reg)
	return &AskMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Questions answered, by outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ask",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage", "outcome"}),
		emptyAnswers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ask",
			Name:      "empty_answers_total",
			Help:      "Generations that returned no usable text.",
		}),
		documents: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ask",
			Name:      "retrieved_documents",
			Help:      "Number of documents retrieved per question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),
	}
}

// Outcome 将错误映射为结果标签。
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch errors.GetCode(err) {
	case errors.ErrAskInvalidRequest.Code:
		return OutcomeClientError
	case errors.ErrAskRetrieval.Code:
		return OutcomeRetrievalError
	case errors.ErrAskAuth.Code:
		return OutcomeAuthError
	case errors.ErrAskGeneration.Code:
		return OutcomeBackendError
	case errors.ErrAskTimeout.Code, errors.ErrTimeout.Code:
		return OutcomeTimeout
	default:
		return OutcomeInternalError
	}
}

// RecordRequest 记录一次问答请求的结果。
func (m *AskMetrics) RecordRequest(err error) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(Outcome(err)).Inc()
}

// ObserveStage 记录阶段耗时。
func (m *AskMetrics) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage, Outcome(err)).Observe(d.Seconds())
}

// RecordEmptyAnswer 记录一次空答案。
func (m *AskMetrics) RecordEmptyAnswer() {
	if m == nil {
		return
	}
	m.emptyAnswers.Inc()
}

// ObserveDocuments 记录检索到的文档数。
func (m *AskMetrics) ObserveDocuments(n int) {
	if m == nil {
		return
	}
	m.documents.Observe(float64(n))
}

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, []interface{}{"request_id", "req-123"}, GetContextFields(ctx))

	assert.Nil(t, GetContextFields(WithRequestID(context.Background(), "")))
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	parent := WithFields(context.Background(), "stage", "retrieve")
	child := WithFields(parent, "stage", "generate", "dangling")

	assert.Equal(t, []interface{}{"stage", "retrieve"}, GetContextFields(parent))
	assert.Equal(t, []interface{}{"stage", "generate"}, GetContextFields(child))
}

func TestFieldsAreOrderedByKey(t *testing.T) {
	ctx := WithFields(context.Background(), "b", 2, "a", 1)
	assert.Equal(t, []interface{}{"a", 1, "b", 2}, GetContextFields(ctx))
}

func TestExtractOpenTelemetryFields(t *testing.T) {
	assert.Nil(t, GetContextFields(ExtractOpenTelemetryFields(context.Background())))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	fields := GetContextFields(ExtractOpenTelemetryFields(ctx))
	require.Len(t, fields, 4)
	assert.Equal(t, "span_id", fields[0])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields[1])
	assert.Equal(t, "trace_id", fields[2])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields[3])
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))
	assert.NotNil(t, GetLogger(WithRequestID(context.Background(), "req-1")))
}

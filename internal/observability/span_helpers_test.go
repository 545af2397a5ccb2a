package observability

import (
	"context"
	"errors"
	"testing"

	contextutils "feedbackboard/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func finishWith(t *testing.T, err error) sdktrace.ReadOnlySpan {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	FinishSpan(span, &err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestFinishSpan_NoError(t *testing.T) {
	span := finishWith(t, nil)
	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Empty(t, span.Events())
}

func TestFinishSpan_PlainErrorMarksSpan(t *testing.T) {
	span := finishWith(t, errors.New("disk on fire"))
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "disk on fire", span.Status().Description)
}

func TestFinishSpan_ExpectedAppErrorLeavesStatusUnset(t *testing.T) {
	span := finishWith(t, contextutils.ErrNothingToExport)

	assert.Equal(t, codes.Unset, span.Status().Code)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "expected_error", span.Events()[0].Name)

	code, ok := attributeValue(span.Attributes(), "error.code")
	require.True(t, ok)
	assert.Equal(t, string(contextutils.ErrorCodeNothingToExport), code.AsString())
}

func TestFinishSpan_StorageAppErrorMarksSpan(t *testing.T) {
	err := contextutils.WrapErrorf(contextutils.ErrStorage, "failed to write key %s", "darkMode")
	span := finishWith(t, err)

	assert.Equal(t, codes.Error, span.Status().Code)
	severity, ok := attributeValue(span.Attributes(), "error.severity")
	require.True(t, ok)
	assert.Equal(t, string(contextutils.SeverityError), severity.AsString())
}

func TestFinishSpan_NilSpanIsSafe(t *testing.T) {
	err := errors.New("ignored")
	assert.NotPanics(t, func() { FinishSpan(nil, &err) })
}

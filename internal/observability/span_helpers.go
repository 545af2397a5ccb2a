package observability

import (
	"errors"

	contextutils "feedbackboard/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FinishSpan ends a span and records any error pointed to by errPtr.
// Use with a named error return: `defer observability.FinishSpan(span, &err)`
//
// AppErrors of info or warn severity (validation failures, nothing to export) are
// expected outcomes: they are attached as an event and leave the span status unset.
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	defer span.End()

	if errPtr == nil || *errPtr == nil {
		return
	}
	err := *errPtr

	var appErr *contextutils.AppError
	if !errors.As(err, &appErr) {
		span.RecordError(err, trace.WithStackTrace(true))
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("error.code", string(appErr.Code)),
		attribute.String("error.severity", string(appErr.Severity)),
	)

	if contextutils.IsExpected(err) {
		span.AddEvent("expected_error", trace.WithAttributes(attribute.String("error.message", err.Error())))
		return
	}
	span.RecordError(err, trace.WithStackTrace(true))
	span.SetStatus(codes.Error, err.Error())
}

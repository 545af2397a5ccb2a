package observability

import (
	"context"
	"fmt"

	"feedbackboard/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "feedback-board"

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer(tracerName)
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		globalTracer = otel.Tracer(tracerName)
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceBoardFunction starts a new span for a feedback board operation.
func TraceBoardFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "board", functionName, attributes...)
}

// TraceStorageFunction starts a new span for a key-value storage call.
func TraceStorageFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "storage", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceDatabaseFunction starts a new span for a database function.
func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

// TraceNotifierFunction starts a new span for an outbound notification.
func TraceNotifierFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "notifier", functionName, attributes...)
}

// AttributeBoardID returns a tracing attribute for a board id.
func AttributeBoardID(boardID string) attribute.KeyValue {
	return attribute.String("board.id", boardID)
}

// AttributeFeedbackID returns a tracing attribute for a feedback record id.
func AttributeFeedbackID(id int64) attribute.KeyValue {
	return attribute.Int64("feedback.id", id)
}

// AttributeFeedback returns the tracing attributes describing a record, without its free text.
func AttributeFeedback(r models.FeedbackRecord) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttributeFeedbackID(r.ID),
		AttributeRating(r.Rating),
	}
}

// AttributeRating returns a tracing attribute for a star rating.
func AttributeRating(rating int) attribute.KeyValue {
	return attribute.Int("feedback.rating", rating)
}

// AttributeFilter returns a tracing attribute for the rating filter.
func AttributeFilter(filter models.RatingFilter) attribute.KeyValue {
	return attribute.String("feedback.filter", string(filter))
}

// AttributeStorageKey returns a tracing attribute for a storage key.
func AttributeStorageKey(key string) attribute.KeyValue {
	return attribute.String("storage.key", key)
}

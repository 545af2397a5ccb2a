package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "feedback-board"

// BoardMetrics holds the counters recorded by feedback board operations
type BoardMetrics struct {
	submitted          metric.Int64Counter
	deleted            metric.Int64Counter
	cleared            metric.Int64Counter
	exported           metric.Int64Counter
	validationFailures metric.Int64Counter
}

var (
	boardMetrics   *BoardMetrics
	boardMetricsMu sync.RWMutex
)

// NewBoardMetrics creates the board counters on the given meter
func NewBoardMetrics(meter metric.Meter) (*BoardMetrics, error) {
	submitted, err := meter.Int64Counter("feedback.submitted", metric.WithDescription("Feedback records added"))
	if err != nil {
		return nil, err
	}
	deleted, err := meter.Int64Counter("feedback.deleted", metric.WithDescription("Feedback records deleted"))
	if err != nil {
		return nil, err
	}
	cleared, err := meter.Int64Counter("feedback.cleared", metric.WithDescription("Clear-all operations"))
	if err != nil {
		return nil, err
	}
	exported, err := meter.Int64Counter("feedback.exported", metric.WithDescription("CSV exports generated"))
	if err != nil {
		return nil, err
	}
	validationFailures, err := meter.Int64Counter("feedback.validation_failures", metric.WithDescription("Rejected submissions"))
	if err != nil {
		return nil, err
	}
	return &BoardMetrics{
		submitted:          submitted,
		deleted:            deleted,
		cleared:            cleared,
		exported:           exported,
		validationFailures: validationFailures,
	}, nil
}

// InitBoardMetrics (re)creates the process-wide counters from the global meter provider
func InitBoardMetrics() {
	m, err := NewBoardMetrics(otel.Meter(meterName))
	if err != nil {
		return
	}
	boardMetricsMu.Lock()
	boardMetrics = m
	boardMetricsMu.Unlock()
}

// GetBoardMetrics returns the process-wide counters, creating them on first use
func GetBoardMetrics() *BoardMetrics {
	boardMetricsMu.RLock()
	m := boardMetrics
	boardMetricsMu.RUnlock()
	if m != nil {
		return m
	}
	InitBoardMetrics()
	boardMetricsMu.RLock()
	defer boardMetricsMu.RUnlock()
	return boardMetrics
}

// RecordSubmitted counts one added record
func (m *BoardMetrics) RecordSubmitted(ctx context.Context, rating int) {
	if m == nil {
		return
	}
	m.submitted.Add(ctx, 1, metric.WithAttributes(attribute.Int("rating", rating)))
}

// RecordDeleted counts one deleted record
func (m *BoardMetrics) RecordDeleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.deleted.Add(ctx, 1)
}

// RecordCleared counts a clear-all and how many records it removed
func (m *BoardMetrics) RecordCleared(ctx context.Context, removed int) {
	if m == nil {
		return
	}
	m.cleared.Add(ctx, 1, metric.WithAttributes(attribute.Int("removed", removed)))
}

// RecordExported counts one CSV export
func (m *BoardMetrics) RecordExported(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.exported.Add(ctx, 1, metric.WithAttributes(attribute.Int("rows", rows)))
}

// RecordValidationFailure counts one rejected submission or filter
func (m *BoardMetrics) RecordValidationFailure(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.validationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

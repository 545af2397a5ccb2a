package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"feedbackboard/internal/config"
	"feedbackboard/internal/models"
	"feedbackboard/internal/observability"
	contextutils "feedbackboard/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// WebhookPayload is the JSON body posted for each new record
type WebhookPayload struct {
	Event    string                `json:"event"`
	BoardID  string                `json:"board_id,omitempty"`
	Feedback models.FeedbackRecord `json:"feedback"`
}

// WebhookEventSubmitted is the event name of a new record
const WebhookEventSubmitted = "feedback.submitted"

// WebhookNotifier posts new feedback to a configured URL
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewWebhookNotifier creates a notifier. An empty URL yields a disabled notifier.
func NewWebhookNotifier(cfg config.NotificationsConfig, logger *observability.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.WebhookTimeout
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &WebhookNotifier{
		url: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
		logger: logger,
	}
}

// Enabled reports whether a webhook URL is configured
func (n *WebhookNotifier) Enabled() bool {
	return n != nil && n.url != ""
}

// NotifySubmitted posts the record. It returns nil without a request when disabled.
func (n *WebhookNotifier) NotifySubmitted(ctx context.Context, boardID string, record models.FeedbackRecord) (err error) {
	if !n.Enabled() {
		return nil
	}
	ctx, span := observability.TraceNotifierFunction(ctx, "notify_submitted", observability.AttributeFeedback(record)...)
	defer observability.FinishSpan(span, &err)

	body, err := json.Marshal(WebhookPayload{Event: WebhookEventSubmitted, BoardID: boardID, Feedback: record})
	if err != nil {
		return contextutils.WrapError(err, "failed to encode webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return contextutils.WrapError(err, "failed to build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return contextutils.NewAppError(contextutils.ErrorCodeServiceUnavailable, contextutils.SeverityWarn,
			"webhook rejected the notification", fmt.Sprintf("status %d", resp.StatusCode))
	}
	return nil
}

// NotifyInBackground sends the notification without blocking the caller. Failures are logged.
func (n *WebhookNotifier) NotifyInBackground(ctx context.Context, boardID string, record models.FeedbackRecord) {
	if !n.Enabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, n.httpClient.Timeout+time.Second)
		defer cancel()
		if err := n.NotifySubmitted(ctx, boardID, record); err != nil {
			n.logger.Warn(ctx, "Feedback webhook failed", map[string]interface{}{
				"error":       err.Error(),
				"feedback_id": record.ID,
			})
		}
	}()
}

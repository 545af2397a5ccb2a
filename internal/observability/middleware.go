package observability

import (
	"errors"

	"feedbackboard/internal/config"
	contextutils "feedbackboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware creates OpenTelemetry middleware for Gin HTTP requests
func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// GinMiddlewareWithErrorHandling returns the OpenTelemetry middleware followed by a handler
// that annotates the request span when the response is a 4xx or 5xx
func GinMiddlewareWithErrorHandling(serviceName string) gin.HandlersChain {
	return gin.HandlersChain{otelgin.Middleware(serviceName), ErrorSpanMiddleware()}
}

// ErrorSpanMiddleware records failed requests on the active span. It must run inside otelgin.
func ErrorSpanMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		statusCode := c.Writer.Status()
		if !span.SpanContext().IsValid() || statusCode < 400 {
			return
		}

		severity := determineErrorSeverity(statusCode, c.Errors)

		errorMsg := "client error"
		if statusCode >= 500 {
			errorMsg = "server error"
		}
		appErr := firstAppError(c.Errors)
		if appErr != nil {
			errorMsg = appErr.Message
		} else if len(c.Errors) > 0 {
			errorMsg = c.Errors.Last().Error()
		}

		span.RecordError(errors.New(errorMsg), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, errorMsg)
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", c.Request.URL.Path),
			attribute.String("error.handler", c.HandlerName()),
			attribute.String("error.severity", severity),
		)

		if boardID := sessionBoardID(c); boardID != "" {
			span.SetAttributes(AttributeBoardID(boardID))
		}

		if c.Request.ContentLength > 0 {
			span.SetAttributes(attribute.Int64("error.request_size", c.Request.ContentLength))
		}

		if appErr != nil {
			span.SetAttributes(
				attribute.String("error.code", string(appErr.Code)),
				attribute.Bool("error.retryable", contextutils.IsRetryable(appErr)),
			)
		}

		if statusCode >= 500 {
			span.SetAttributes(attribute.Bool("error.server_error", true))
		}
	}
}

// sessionBoardID reads the board id without requiring the sessions middleware to be installed
func sessionBoardID(c *gin.Context) string {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return ""
	}
	boardID, _ := sessions.Default(c).Get(config.SessionBoardKey).(string)
	return boardID
}

func firstAppError(errs []*gin.Error) *contextutils.AppError {
	for _, err := range errs {
		var appErr *contextutils.AppError
		if errors.As(err.Err, &appErr) {
			return appErr
		}
	}
	return nil
}

// determineErrorSeverity determines the severity level based on status code and error types
func determineErrorSeverity(statusCode int, errs []*gin.Error) string {
	if appErr := firstAppError(errs); appErr != nil {
		return string(appErr.Severity)
	}

	switch {
	case statusCode >= 500:
		return string(contextutils.SeverityError)
	case statusCode >= 400:
		return string(contextutils.SeverityWarn)
	default:
		return string(contextutils.SeverityInfo)
	}
}

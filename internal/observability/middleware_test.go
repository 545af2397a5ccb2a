package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	contextutils "feedbackboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func setupRecordingTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
	})
	return recorder
}

func setupGinWithSessions() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("test-secret-key"))
	router.Use(sessions.Sessions("test-session", store))

	return router
}

func attributeValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestGinMiddleware_BasicFunctionality(t *testing.T) {
	setupRecordingTracer(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware("test-service"))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGinMiddleware_TraceHeadersPropagation(t *testing.T) {
	setupRecordingTracer(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware("test-service"))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"has_traceparent": c.Request.Header.Get("traceparent") != ""})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("traceparent", "00-12345678901234567890123456789012-1234567890123456-01")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["has_traceparent"])
}

func TestGinMiddlewareWithErrorHandling_ClientErrorMarksSpan(t *testing.T) {
	recorder := setupRecordingTracer(t)

	router := setupGinWithSessions()
	router.Use(GinMiddlewareWithErrorHandling("test-service")...)
	router.GET("/client-error", func(c *gin.Context) {
		_ = c.Error(contextutils.NewValidationError("name", "must not be empty"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	})

	req, _ := http.NewRequest("GET", "/client-error", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	code, ok := attributeValue(spans[0].Attributes(), "error.code")
	require.True(t, ok)
	assert.Equal(t, string(contextutils.ErrorCodeValidationFailed), code.AsString())

	severity, ok := attributeValue(spans[0].Attributes(), "error.severity")
	require.True(t, ok)
	assert.Equal(t, "warn", severity.AsString())
}

func TestGinMiddlewareWithErrorHandling_SuccessLeavesSpanUnset(t *testing.T) {
	recorder := setupRecordingTracer(t)

	router := setupGinWithSessions()
	router.Use(GinMiddlewareWithErrorHandling("test-service")...)
	router.GET("/success", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/success", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	_, ok := attributeValue(spans[0].Attributes(), "error.severity")
	assert.False(t, ok)
}

func TestGinMiddlewareWithErrorHandling_ServerErrorWithoutSessions(t *testing.T) {
	recorder := setupRecordingTracer(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddlewareWithErrorHandling("test-service")...)
	router.GET("/server-error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	})

	req, _ := http.NewRequest("GET", "/server-error", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	serverErr, ok := attributeValue(spans[0].Attributes(), "error.server_error")
	require.True(t, ok)
	assert.True(t, serverErr.AsBool())
}

func TestDetermineErrorSeverity(t *testing.T) {
	assert.Equal(t, "error", determineErrorSeverity(http.StatusServiceUnavailable, nil))
	assert.Equal(t, "warn", determineErrorSeverity(http.StatusConflict, nil))
	assert.Equal(t, "info", determineErrorSeverity(http.StatusOK, nil))

	errs := []*gin.Error{{Err: contextutils.ErrNothingToExport}}
	assert.Equal(t, "info", determineErrorSeverity(http.StatusConflict, errs))
}

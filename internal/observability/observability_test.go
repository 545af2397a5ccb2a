package observability

import (
	"context"
	"reflect"
	"testing"

	"feedbackboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	autosdk "go.opentelemetry.io/auto/sdk"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetupObservability_AllEnabled(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing: true,
		EnableMetrics: true,
		EnableLogging: true,
		ServiceName:   "test-service",
		Protocol:      "grpc",
		Endpoint:      "localhost:4317",
		Insecure:      true,
		SamplingRate:  1.0,
	}
	tp, mp, logger, err := SetupObservability(cfg, "test-service")
	require.NoError(t, err)
	require.NotNil(t, tp)
	require.NotNil(t, mp)
	require.NotNil(t, logger)
	assert.NotNil(t, GetBoardMetrics())
}

func TestSetupObservability_NoneEnabled(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		ServiceName: "test-service",
		Protocol:    "grpc",
		Endpoint:    "localhost:4317",
	}
	tp, mp, logger, err := SetupObservability(cfg, "test-service")
	require.NoError(t, err)
	require.Nil(t, tp)
	require.Nil(t, mp)
	require.NotNil(t, logger)

	assert.NoError(t, ShutdownProviders(context.Background(), tp, mp))
}

func TestLogger_TraceCorrelation(_ *testing.T) {
	logger := NewLogger(&config.OpenTelemetryConfig{EnableLogging: true})
	ctx := context.Background()
	logger.Info(ctx, "test message")
	logger.Error(ctx, "test error", nil)

	ctx, span := noop.NewTracerProvider().Tracer("test").Start(ctx, "test-span")
	logger.Info(ctx, "test message with span")
	span.End()
}

func TestSetupObservability_UseAutoSDK(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing:  true,
		UseAutoSDK:     true,
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
	}
	tp, _, logger, err := SetupObservability(cfg, "test-service")
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, isStandardSDK := tp.(*sdktrace.TracerProvider)
	require.False(t, isStandardSDK, "Expected Auto SDK TracerProvider, got standard SDK")
	require.Equal(t, reflect.TypeOf(autosdk.TracerProvider()), reflect.TypeOf(tp))
}

func TestSetupObservability_StandardSDK(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing:  true,
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Protocol:       "grpc",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SamplingRate:   1.0,
	}
	tp, _, logger, err := SetupObservability(cfg, "")
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, isStandardSDK := tp.(*sdktrace.TracerProvider)
	require.True(t, isStandardSDK, "Expected standard SDK TracerProvider when UseAutoSDK is false")
	assert.Equal(t, "test-service", cfg.ServiceName)
}

func TestSetupObservability_InvalidProtocolReturnsError(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing: true,
		ServiceName:   "test-service",
		Protocol:      "carrier-pigeon",
		Endpoint:      "localhost:4317",
	}
	_, _, _, err := SetupObservability(cfg, "test-service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported otel protocol")
}

func TestInitStandardTracing(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		endpoint string
		wantErr  bool
	}{
		{"grpc", "grpc", "localhost:4317", false},
		{"http", "http", "localhost:4318", false},
		{"invalid", "invalid", "localhost:4317", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.OpenTelemetryConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Protocol:       tt.protocol,
				Endpoint:       tt.endpoint,
				Insecure:       true,
				SamplingRate:   0.5,
			}
			tp, err := InitStandardTracing(cfg)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, tp)
				return
			}
			require.NoError(t, err)
			_, ok := tp.(*sdktrace.TracerProvider)
			require.True(t, ok, "Expected *sdktrace.TracerProvider")
		})
	}
}

func TestInitMetrics_InvalidProtocol(t *testing.T) {
	mp, err := InitMetrics(&config.OpenTelemetryConfig{Protocol: "smoke-signal"})
	require.Error(t, err)
	require.Nil(t, mp)
}

func TestBoardMetrics_RecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewBoardMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSubmitted(ctx, 5)
	m.RecordSubmitted(ctx, 4)
	m.RecordDeleted(ctx)
	m.RecordCleared(ctx, 3)
	m.RecordExported(ctx, 2)
	m.RecordValidationFailure(ctx, "name")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, metric.Name)
		for _, dp := range sum.DataPoints {
			totals[metric.Name] += dp.Value
		}
	}
	assert.Equal(t, int64(2), totals["feedback.submitted"])
	assert.Equal(t, int64(1), totals["feedback.deleted"])
	assert.Equal(t, int64(1), totals["feedback.cleared"])
	assert.Equal(t, int64(1), totals["feedback.exported"])
	assert.Equal(t, int64(1), totals["feedback.validation_failures"])
}

func TestBoardMetrics_NilIsSafe(_ *testing.T) {
	var m *BoardMetrics
	m.RecordSubmitted(context.Background(), 1)
	m.RecordDeleted(context.Background())
}

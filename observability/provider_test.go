package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/gaborage/zephyr/config"
	"github.com/gaborage/zephyr/logger"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	tp := otel.GetTracerProvider()
	mp := otel.GetMeterProvider()
	prop := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		otel.SetTextMapPropagator(prop)
	})
}

func testLogger() logger.Logger {
	return logger.NewWithWriter(&bytes.Buffer{}, "debug", false)
}

func TestNewProviderDisabled(t *testing.T) {
	restoreGlobals(t)
	before := otel.GetTracerProvider()

	p, err := NewProvider(config.ObservabilityConfig{Protocol: config.ProtocolHTTP}, testLogger())
	require.NoError(t, err)

	assert.IsType(t, &noopProvider{}, p)
	assert.NotNil(t, p.TracerProvider())
	assert.NotNil(t, p.MeterProvider())
	assert.NoError(t, p.ForceFlush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestNewProviderStdout(t *testing.T) {
	restoreGlobals(t)

	p, err := NewProvider(config.ObservabilityConfig{
		Service:  "zephyr-test",
		Protocol: config.ProtocolHTTP,
		Trace:    config.EndpointConfig{Endpoint: config.EndpointStdout},
		Metrics:  config.EndpointConfig{Endpoint: config.EndpointStdout},
	}, testLogger())
	require.NoError(t, err)

	assert.IsType(t, &sdktrace.TracerProvider{}, p.TracerProvider())
	assert.IsType(t, &sdkmetric.MeterProvider{}, p.MeterProvider())
	assert.Equal(t, p.TracerProvider(), otel.GetTracerProvider())
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")

	require.NoError(t, p.ForceFlush(context.Background()))
	require.NoError(t, Shutdown(p, time.Second))
}

func TestNewProviderTraceOnly(t *testing.T) {
	restoreGlobals(t)

	p, err := NewProvider(config.ObservabilityConfig{
		Service:  "zephyr-test",
		Protocol: config.ProtocolHTTP,
		Trace:    config.EndpointConfig{Endpoint: config.EndpointStdout},
	}, nil)
	require.NoError(t, err)

	assert.IsType(t, &sdktrace.TracerProvider{}, p.TracerProvider())
	_, isSDK := p.MeterProvider().(*sdkmetric.MeterProvider)
	assert.False(t, isSDK)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderOTLP(t *testing.T) {
	for _, protocol := range []string{config.ProtocolHTTP, config.ProtocolGRPC} {
		t.Run(protocol, func(t *testing.T) {
			restoreGlobals(t)

			p, err := NewProvider(config.ObservabilityConfig{
				Service:  "zephyr-test",
				Protocol: protocol,
				Insecure: true,
				Trace:    config.EndpointConfig{Endpoint: "127.0.0.1:4318"},
				Metrics:  config.EndpointConfig{Endpoint: "127.0.0.1:4318"},
			}, testLogger())
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = p.Shutdown(ctx)
		})
	}
}

func TestNewProviderErrors(t *testing.T) {
	restoreGlobals(t)

	_, err := NewProvider(config.ObservabilityConfig{
		Protocol: config.ProtocolHTTP,
		Trace:    config.EndpointConfig{Endpoint: config.EndpointStdout},
	}, testLogger())
	assert.ErrorIs(t, err, ErrMissingServiceName)

	_, err = NewProvider(config.ObservabilityConfig{
		Service:  "zephyr-test",
		Protocol: "smoke-signals",
		Trace:    config.EndpointConfig{Endpoint: "collector:4317"},
	}, testLogger())
	assert.ErrorIs(t, err, ErrInvalidProtocol)

	_, err = NewProvider(config.ObservabilityConfig{
		Service:  "zephyr-test",
		Protocol: "smoke-signals",
		Metrics:  config.EndpointConfig{Endpoint: "collector:4317"},
	}, testLogger())
	assert.True(t, errors.Is(err, ErrInvalidProtocol))
}

func TestShutdownNilProvider(t *testing.T) {
	assert.NoError(t, Shutdown(nil, 0))
}

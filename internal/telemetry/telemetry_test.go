package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitDisabledInstallsNoop(t *testing.T) {
	t.Setenv("SFOPS_OTEL_ENABLED", "false")
	require.NoError(t, Init(context.Background(), "sfops-migrate", "test"))
	defer Shutdown(context.Background())

	assert.False(t, Enabled())
	_, span := Tracer("").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.Empty(t, shutdownFns)
	assert.NotNil(t, otel.GetMeterProvider())
}

func TestInitStdoutMode(t *testing.T) {
	t.Setenv("SFOPS_OTEL_ENABLED", "true")
	t.Setenv("SFOPS_OTEL_STDOUT", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	require.NoError(t, Init(context.Background(), "sfops-migrate", "test"))

	assert.Len(t, shutdownFns, 2)
	_, span := Tracer("").Start(context.Background(), "real")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	Shutdown(context.Background())
	assert.Empty(t, shutdownFns)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}

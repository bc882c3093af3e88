package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/flxbl-io/sfops-migrator/internal/github"
	"github.com/flxbl-io/sfops-migrator/internal/migrate"
)

// stubGateway answers every call with fixed values and err.
type stubGateway struct {
	err error
}

func (s stubGateway) ListVariables(context.Context) ([]github.Variable, error) {
	return []github.Variable{{Name: "A_DEVSBX"}, {Name: "B"}}, s.err
}

func (s stubGateway) GetVariable(_ context.Context, name string) (*github.Variable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &github.Variable{Name: name}, nil
}

func (s stubGateway) CreateVariable(context.Context, string, string) error { return s.err }
func (s stubGateway) DeleteVariable(context.Context, string) error { return s.err }

func (s stubGateway) FetchIssueByNumber(_ context.Context, n int) (*github.Issue, error) {
	return &github.Issue{Number: n}, s.err
}

func (s stubGateway) UpdateIssueBody(_ context.Context, n int, body string) (*github.Issue, error) {
	return &github.Issue{Number: n, Body: body}, s.err
}

func instrumented(t *testing.T, inner migrate.Gateway) (*InstrumentedGateway, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	return newInstrumentedGateway(inner, tp.Tracer("test"), mp.Meter("test")), rec, reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestWrapGatewayDisabled(t *testing.T) {
	t.Setenv("SFOPS_OTEL_ENABLED", "")
	inner := stubGateway{}
	assert.Equal(t, migrate.Gateway(inner), WrapGateway(inner))
}

func TestWrapGatewayEnabled(t *testing.T) {
	t.Setenv("SFOPS_OTEL_ENABLED", "true")
	_, ok := WrapGateway(stubGateway{}).(*InstrumentedGateway)
	assert.True(t, ok)
}

func TestInstrumentedGatewaySpans(t *testing.T) {
	gw, rec, reader := instrumented(t, stubGateway{})
	ctx := context.Background()

	vars, err := gw.ListVariables(ctx)
	require.NoError(t, err)
	assert.Len(t, vars, 2)
	_, err = gw.GetVariable(ctx, "CONTEXT_7")
	require.NoError(t, err)
	require.NoError(t, gw.CreateVariable(ctx, "CONTEXT_7", "{}"))
	require.NoError(t, gw.DeleteVariable(ctx, "A_DEVSBX"))
	_, err = gw.FetchIssueByNumber(ctx, 7)
	require.NoError(t, err)
	issue, err := gw.UpdateIssueBody(ctx, 7, "body")
	require.NoError(t, err)
	assert.Equal(t, "body", issue.Body)

	spans := rec.Ended()
	require.Len(t, spans, 6)
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{
		"github.ListVariables", "github.GetVariable", "github.CreateVariable",
		"github.DeleteVariable", "github.FetchIssueByNumber", "github.UpdateIssueBody",
	}, names)
	assert.Contains(t, spans[1].Attributes(), attribute.String("sfops.variable.name", "CONTEXT_7"))
	assert.Contains(t, spans[4].Attributes(), attribute.Int("sfops.issue.number", 7))

	assert.Equal(t, int64(6), counterTotal(t, reader, "sfops.gateway.operations"))
	assert.Equal(t, int64(0), counterTotal(t, reader, "sfops.gateway.errors"))
}

func TestInstrumentedGatewayErrors(t *testing.T) {
	notFound := &github.APIError{StatusCode: 404, Method: "GET", URL: "x", Message: "Not Found"}
	gw, rec, reader := instrumented(t, stubGateway{err: notFound})

	_, err := gw.GetVariable(context.Background(), "CONTEXT_9")
	require.Error(t, err)
	assert.Same(t, notFound, err, "errors pass through unchanged")
	assert.True(t, github.IsNotFound(err))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.response.status_code", 404))
	assert.Equal(t, int64(1), counterTotal(t, reader, "sfops.gateway.errors"))

	plain := errors.New("boom")
	gw2, rec2, _ := instrumented(t, stubGateway{err: plain})
	require.ErrorIs(t, gw2.DeleteVariable(context.Background(), "A_DEVSBX"), plain)
	for _, kv := range rec2.Ended()[0].Attributes() {
		assert.NotEqual(t, attribute.Key("http.response.status_code"), kv.Key)
	}
}

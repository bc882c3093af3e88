package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/flxbl-io/sfops-migrator/internal/github"
	"github.com/flxbl-io/sfops-migrator/internal/migrate"
)

const gatewayScopeName = "github.com/flxbl-io/sfops-migrator/gateway"

// InstrumentedGateway wraps migrate.Gateway with OTel tracing and metrics.
// Every call gets a client span and is counted in sfops.gateway.* metrics.
type InstrumentedGateway struct {
	inner  migrate.Gateway
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapGateway returns g decorated with OTel instrumentation.
// When telemetry is disabled, g is returned as-is.
func WrapGateway(g migrate.Gateway) migrate.Gateway {
	if !Enabled() {
		return g
	}
	return newInstrumentedGateway(g, Tracer(gatewayScopeName), Meter(gatewayScopeName))
}

func newInstrumentedGateway(g migrate.Gateway, tracer trace.Tracer, m metric.Meter) *InstrumentedGateway {
	ops, _ := m.Int64Counter("sfops.gateway.operations",
		metric.WithDescription("Total GitHub gateway calls"),
	)
	dur, _ := m.Float64Histogram("sfops.gateway.operation.duration",
		metric.WithDescription("GitHub gateway call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("sfops.gateway.errors",
		metric.WithDescription("Total GitHub gateway errors (not-found included)"),
	)
	return &InstrumentedGateway{inner: g, tracer: tracer, ops: ops, dur: dur, errs: errs}
}

// op starts a span and records a metric for the named gateway call.
func (g *InstrumentedGateway) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("sfops.gateway.operation", name)}, attrs...)
	ctx, span := g.tracer.Start(ctx, "github."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	g.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (g *InstrumentedGateway) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	g.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		if status := github.StatusCode(err); status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		span.SetStatus(codes.Error, err.Error())
		g.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func (g *InstrumentedGateway) ListVariables(ctx context.Context) ([]github.Variable, error) {
	ctx, span, t := g.op(ctx, "ListVariables")
	v, err := g.inner.ListVariables(ctx)
	span.SetAttributes(attribute.Int("sfops.variable.count", len(v)))
	g.done(ctx, span, t, err)
	return v, err
}

func (g *InstrumentedGateway) GetVariable(ctx context.Context, name string) (*github.Variable, error) {
	attrs := []attribute.KeyValue{attribute.String("sfops.variable.name", name)}
	ctx, span, t := g.op(ctx, "GetVariable", attrs...)
	v, err := g.inner.GetVariable(ctx, name)
	g.done(ctx, span, t, err, attrs...)
	return v, err
}

func (g *InstrumentedGateway) CreateVariable(ctx context.Context, name, value string) error {
	attrs := []attribute.KeyValue{attribute.String("sfops.variable.name", name)}
	ctx, span, t := g.op(ctx, "CreateVariable", attrs...)
	err := g.inner.CreateVariable(ctx, name, value)
	g.done(ctx, span, t, err, attrs...)
	return err
}

func (g *InstrumentedGateway) DeleteVariable(ctx context.Context, name string) error {
	attrs := []attribute.KeyValue{attribute.String("sfops.variable.name", name)}
	ctx, span, t := g.op(ctx, "DeleteVariable", attrs...)
	err := g.inner.DeleteVariable(ctx, name)
	g.done(ctx, span, t, err, attrs...)
	return err
}

func (g *InstrumentedGateway) FetchIssueByNumber(ctx context.Context, number int) (*github.Issue, error) {
	attrs := []attribute.KeyValue{attribute.Int("sfops.issue.number", number)}
	ctx, span, t := g.op(ctx, "FetchIssueByNumber", attrs...)
	v, err := g.inner.FetchIssueByNumber(ctx, number)
	g.done(ctx, span, t, err, attrs...)
	return v, err
}

func (g *InstrumentedGateway) UpdateIssueBody(ctx context.Context, number int, body string) (*github.Issue, error) {
	attrs := []attribute.KeyValue{attribute.Int("sfops.issue.number", number)}
	ctx, span, t := g.op(ctx, "UpdateIssueBody", attrs...)
	v, err := g.inner.UpdateIssueBody(ctx, number, body)
	g.done(ctx, span, t, err, attrs...)
	return v, err
}

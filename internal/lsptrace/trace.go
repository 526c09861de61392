// Package lsptrace wraps Connection operations in OpenTelemetry spans,
// exported via a stdout exporter suitable for local inspection and
// tests.
package lsptrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// NewStdoutTracerProvider builds a TracerProvider that writes finished
// spans to stdout, suitable for local inspection and tests.
func NewStdoutTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	), nil
}

// instrumentationName names the single instrumentation scope of the
// tracer that emits this package's spans.
const instrumentationName = "github.com/lspframe/lspframe/internal/lsptrace"

// StartSpan starts a span named lspframe.connection.<op> with the given
// attributes, returning the derived context and the span to End().
func StartSpan(ctx context.Context, tp trace.TracerProvider, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tp == nil {
		return ctx, noopSpan{}
	}
	tracer := tp.Tracer(instrumentationName)
	return tracer.Start(ctx, "lspframe.connection."+op, trace.WithAttributes(attrs...))
}

// noopSpan lets callers unconditionally defer span.End() even when no
// TracerProvider was configured.
type noopSpan struct{ trace.Span }

func (noopSpan) End(...trace.SpanEndOption) {}

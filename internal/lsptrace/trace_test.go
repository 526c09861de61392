package lsptrace

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_NilProviderReturnsNoop(t *testing.T) {
	ctx, span := StartSpan(context.Background(), nil, "send")
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	span.End() // must not panic
}

func TestStartSpan_RecordsSpanWithAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), tp, "send", attribute.String("lspframe.event", "RequestSent"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "lspframe.connection.send" {
		t.Errorf("span name = %q, want %q", got, "lspframe.connection.send")
	}
}

func TestNewStdoutTracerProvider(t *testing.T) {
	tp, err := NewStdoutTracerProvider()
	if err != nil {
		t.Fatalf("NewStdoutTracerProvider failed: %v", err)
	}
	if tp == nil {
		t.Fatal("expected non-nil TracerProvider")
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

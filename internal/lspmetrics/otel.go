package lspmetrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewStdoutMeterProvider builds an otel MeterProvider that periodically
// dumps collected instruments to stdout. It exists so the otel/metric and
// exporters/stdout/stdoutmetric dependencies the module carries have a
// concrete consumer, as an alternate metrics surface alongside the
// Prometheus registry New builds.
func NewStdoutMeterProvider() (*sdkmetric.MeterProvider, error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	), nil
}

// OTelMirror duplicates the counters in Metrics onto an otel Meter, for
// deployments that ship traces/metrics through an OTel collector instead
// of (or alongside) a Prometheus scrape endpoint.
type OTelMirror struct {
	bytesSent     metric.Int64Counter
	bytesReceived metric.Int64Counter
	errors        metric.Int64Counter
}

// NewOTelMirror creates counters on meter mirroring the Prometheus ones.
func NewOTelMirror(meter metric.Meter) (*OTelMirror, error) {
	bytesSent, err := meter.Int64Counter("lspframe.bytes_sent",
		metric.WithDescription("Total bytes emitted by Send/SendJSON."))
	if err != nil {
		return nil, err
	}
	bytesReceived, err := meter.Int64Counter("lspframe.bytes_received",
		metric.WithDescription("Total bytes fed in via Receive."))
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter("lspframe.protocol_errors",
		metric.WithDescription("Total ProtocolError occurrences."))
	if err != nil {
		return nil, err
	}
	return &OTelMirror{bytesSent: bytesSent, bytesReceived: bytesReceived, errors: errs}, nil
}

// RecordBytesSent adds n to the otel-backed counter.
func (m *OTelMirror) RecordBytesSent(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesSent.Add(ctx, int64(n))
}

// RecordBytesReceived adds n to the otel-backed counter.
func (m *OTelMirror) RecordBytesReceived(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesReceived.Add(ctx, int64(n))
}

// RecordProtocolError increments the otel-backed error counter.
func (m *OTelMirror) RecordProtocolError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

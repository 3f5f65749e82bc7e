package adapter

import (
	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// NewMeter returns the process-wide MeterProvider's Meter for name, for
// callers wiring channel.WithMeter without importing the otel root package
// themselves. With no SDK configured this is otel's global no-op provider.
func NewMeter(name string) otelmetric.Meter {
	return otel.GetMeterProvider().Meter(name)
}

// NewTracer is NewMeter's tracing counterpart, for channel.WithTracer.
func NewTracer(name string) oteltrace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

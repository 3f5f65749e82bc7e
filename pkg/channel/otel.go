package channel

import (
	"context"

	otelmetric "go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// otelHooks wraps the optional Meter/Tracer a Config can carry, following
// an "accept it, no-op if unset" pattern. A nil *otelHooks is valid and every method on it
// is a no-op, so dual.go never has to branch on whether otel was configured.
type otelHooks struct {
	tracer    oteltrace.Tracer
	sentBytes otelmetric.Int64Counter
	recvBytes otelmetric.Int64Counter
}

func newOtelHooks(cfg Config) *otelHooks {
	if cfg.Meter == nil && cfg.Tracer == nil {
		return nil
	}
	h := &otelHooks{tracer: cfg.Tracer}
	if cfg.Meter != nil {
		if c, err := cfg.Meter.Int64Counter("xshm.bytes.sent"); err == nil {
			h.sentBytes = c
		}
		if c, err := cfg.Meter.Int64Counter("xshm.bytes.received"); err == nil {
			h.recvBytes = c
		}
	}
	return h
}

var noopTracer = noop.NewTracerProvider().Tracer("xshm")

func (h *otelHooks) startSpan(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	if h == nil || h.tracer == nil {
		return noopTracer.Start(ctx, name)
	}
	return h.tracer.Start(ctx, name)
}

func (h *otelHooks) recordSent(ctx context.Context, n int) {
	if h == nil || h.sentBytes == nil {
		return
	}
	h.sentBytes.Add(ctx, int64(n))
}

func (h *otelHooks) recordReceived(ctx context.Context, n int) {
	if h == nil || h.recvBytes == nil {
		return
	}
	h.recvBytes.Add(ctx, int64(n))
}

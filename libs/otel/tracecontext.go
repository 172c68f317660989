package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Carried is a span context in W3C text form, persisted next to an outbox row.
type Carried struct {
	Traceparent string
	Tracestate  string
}

func (c Carried) Empty() bool {
	return c.Traceparent == "" && c.Tracestate == ""
}

// Capture returns the span context of ctx. It is empty when ctx carries no span.
func Capture(ctx context.Context) Carried {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return Carried{Traceparent: carrier.Get("traceparent"), Tracestate: carrier.Get("tracestate")}
}

// Resume attaches c to ctx as the remote parent, so a publisher continues the
// trace of the request that stored the event.
func (c Carried) Resume(ctx context.Context) context.Context {
	if c.Empty() {
		return ctx
	}
	carrier := propagation.MapCarrier{}
	carrier.Set("traceparent", c.Traceparent)
	if c.Tracestate != "" {
		carrier.Set("tracestate", c.Tracestate)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

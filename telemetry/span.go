// Package telemetry provides OpenTelemetry helpers shared by the gateway and
// the HTTP API.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on gateway spans.
const (
	AttrKind        = attribute.Key("ergast.kind")
	AttrCallID      = attribute.Key("ergast.call_id")
	AttrURL         = attribute.Key("ergast.url")
	AttrResultCount = attribute.Key("result.count")
	AttrAttempt     = attribute.Key("http.attempt")
	AttrOutcome     = attribute.Key("http.outcome")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns
// the span already in ctx.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span as failed. Nil spans
// and nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}

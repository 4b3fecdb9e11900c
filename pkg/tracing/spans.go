package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "seotooler/contact"

const (
	AttrRelayName          = attribute.Key("relay.name")
	AttrRelayOutcome       = attribute.Key("relay.outcome")
	AttrRateLimitAllowed   = attribute.Key("ratelimit.allowed")
	AttrRateLimitLimit     = attribute.Key("ratelimit.limit")
	AttrRateLimitRemaining = attribute.Key("ratelimit.remaining")
)

// StartRelaySpan opens the client span around one relay attempt. The
// otelhttp transport nests the outbound HTTP span beneath it.
func StartRelaySpan(ctx context.Context, relay string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "relay.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrRelayName.String(relay)),
	)
}

// EndRelaySpan records the outcome label used by the relay metrics and
// marks the span failed when err is set.
func EndRelaySpan(span trace.Span, outcome string, err error) {
	span.SetAttributes(AttrRelayOutcome.String(outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()
}

// AnnotateRateLimit adds the quota decision to the request span.
func AnnotateRateLimit(ctx context.Context, allowed bool, limit, remaining int) {
	trace.SpanFromContext(ctx).SetAttributes(
		AttrRateLimitAllowed.Bool(allowed),
		AttrRateLimitLimit.Int(limit),
		AttrRateLimitRemaining.Int(remaining),
	)
}

package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.26.0"

	"seotooler/internal/config"
	"seotooler/internal/constants"
)

const exporterTimeout = 5 * time.Second

type TracerProvider struct {
	tp *sdktrace.TracerProvider
}

func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.tp != nil {
		return tp.tp.Shutdown(ctx)
	}
	return nil
}

// ServiceAttributes describes how this instance limits and relays, so
// traces from differently configured deployments can be told apart.
func ServiceAttributes(cfg *config.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("contact.path", cfg.Server.ContactPath),
		attribute.String("contact.ratelimit.store", cfg.RateLimit.Store),
		attribute.Int("contact.ratelimit.max_requests", cfg.RateLimit.MaxRequests),
		attribute.String("contact.ratelimit.window", cfg.RateLimit.Window.String()),
		attribute.Bool("contact.relay.configured", cfg.Relay.Configured()),
	}
}

// Init installs the global tracer provider and propagator. Disabled tracing
// leaves the global no-op provider in place, so the span helpers in this
// package cost nothing.
func Init(cfg *config.Config) (*TracerProvider, error) {
	tc := cfg.Tracing
	if !tc.Enabled {
		return &TracerProvider{}, nil
	}

	serviceName := tc.ServiceName
	if serviceName == "" {
		serviceName = constants.ServiceName
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
		resource.WithAttributes(ServiceAttributes(cfg)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), exporterTimeout)
	defer cancel()

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(tc.OTLP.Endpoint)}
	if tc.OTLP.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(tc.Sampler)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{tp: tp}, nil
}

// newSampler defaults to sampling every submission; the gateway sees little
// traffic. Ratios are clamped to [0, 1].
func newSampler(cfg config.SamplerConfig) sdktrace.Sampler {
	ratio := cfg.Param
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}

	switch cfg.Type {
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(ratio)
	case "parentbased_always_on":
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	default:
		return sdktrace.AlwaysSample()
	}
}

package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "racebot"

// TracerProviderOption configures NewTracerProvider.
type TracerProviderOption func(*tracerProviderConfig)

type tracerProviderConfig struct {
	serviceVersion string
	endpoint       string
	insecure       bool
	sampling       float64
	exporter       sdktrace.SpanExporter
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) TracerProviderOption {
	return func(cfg *tracerProviderConfig) {
		cfg.serviceVersion = version
	}
}

// WithEndpoint exports spans over OTLP/HTTP to endpoint (host:port).
func WithEndpoint(endpoint string, insecure bool) TracerProviderOption {
	return func(cfg *tracerProviderConfig) {
		cfg.endpoint = endpoint
		cfg.insecure = insecure
	}
}

// WithSampling sets the ratio of root traces that are sampled.
func WithSampling(ratio float64) TracerProviderOption {
	return func(cfg *tracerProviderConfig) {
		cfg.sampling = ratio
	}
}

// WithExporter sends spans synchronously to exporter. It takes precedence
// over WithEndpoint.
func WithExporter(exporter sdktrace.SpanExporter) TracerProviderOption {
	return func(cfg *tracerProviderConfig) {
		cfg.exporter = exporter
	}
}

// NewTracerProvider creates an SDK tracer provider and installs it, together
// with the W3C trace context propagator, as the global provider.
//
// Spans are always recorded so log lines carry trace and span ids. They are
// only exported when an endpoint or exporter is configured. The caller must
// call Shutdown on the returned provider.
func NewTracerProvider(ctx context.Context, opts ...TracerProviderOption) (*sdktrace.TracerProvider, error) {
	cfg := &tracerProviderConfig{
		serviceVersion: "unknown",
		sampling:       1,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(cfg.serviceVersion),
		),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampling))),
	}

	switch {
	case cfg.exporter != nil:
		tpOpts = append(tpOpts, sdktrace.WithSyncer(cfg.exporter))
	case cfg.endpoint != "":
		exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.endpoint)}
		if cfg.insecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
		slog.Info("Tracing export enabled",
			slog.String("endpoint", cfg.endpoint),
			slog.Float64("sampling_ratio", cfg.sampling),
			slog.Bool("insecure", cfg.insecure))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

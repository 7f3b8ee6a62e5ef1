package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

// ServiceName identifies exported spans.
const ServiceName = "noderun"

// NewProvider creates a tracer provider that reports spans to logger and installs it globally.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(logger)),
		sdktrace.WithResource(resource.NewWithAttributes("", attribute.String("service.name", ServiceName))),
	)
	otel.SetTracerProvider(tp)
	return tp
}

// Export sends spans to the OTLP collector at endpoint over gRPC.
// An empty endpoint disables export.
func (t *OTelTracer) Export(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return nil
	}
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create trace exporter"), "endpoint", endpoint)
	}
	t.provider.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter))
	return nil
}

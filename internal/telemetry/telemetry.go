// Package telemetry installs OpenTelemetry tracing when an OTLP collector is configured.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// Shutdown flushes and stops the tracer provider
type Shutdown func(context.Context) error

// Setup installs a global tracer provider exporting over OTLP gRPC.
// Without OTEL_EXPORTER_OTLP_ENDPOINT it does nothing.
func Setup(ctx context.Context, serviceName string) (Shutdown, error) {
	if os.Getenv(EndpointEnv) == "" {
		slog.Debug("Tracing disabled", "env", EndpointEnv)
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName(serviceName),
			),
		),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	slog.Info("Tracing enabled", "service", serviceName, "endpoint", os.Getenv(EndpointEnv))
	return tp.Shutdown, nil
}

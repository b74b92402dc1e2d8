// Пакет telemetry — трассировка OpenTelemetry с экспортом по OTLP/gRPC.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc сбрасывает накопленные spans и останавливает экспорт.
type ShutdownFunc func(context.Context) error

// Setup настраивает глобальный TracerProvider.
// Пустой endpoint отключает трассировку: возвращается no-op ShutdownFunc.
func Setup(ctx context.Context, endpoint string, insecure bool, serviceName, version string, logger *slog.Logger) (ShutdownFunc, error) {
	if endpoint == "" {
		logger.Info("Трассировка отключена (AOKA_OTEL_ENDPOINT не задан)")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("создание OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("создание resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Трассировка включена", slog.String("endpoint", endpoint))
	return provider.Shutdown, nil
}

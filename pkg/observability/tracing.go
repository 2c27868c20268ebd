package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracingConfig holds tracing configuration. An empty Endpoint keeps spans
// in-process and exports nothing.
type TracingConfig struct {
	ServiceName string
	Endpoint    string
	Insecure    bool
}

// ShutdownFunc flushes and stops a provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracer installs a global TracerProvider and W3C propagator.
func InitTracer(ctx context.Context, cfg TracingConfig) (ShutdownFunc, error) {
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.Endpoint != "" {
		clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
		}

		exporter, err := otlptracegrpc.New(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("observability: otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider.Shutdown, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = "credit-risk-service"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: resource: %w", err)
	}
	return res, nil
}

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported as service.version on every exported signal
const ServiceVersion = "1.0.0"

// Collector is the OTLP gRPC target shared by traces, metrics and logs.
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// serviceResource tags exported data with the service name and version
// on top of the SDK defaults (host, process, telemetry.sdk.*).
func (c Collector) serviceResource() (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	return res, nil
}

func (c Collector) fields(extra ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("collector_endpoint", c.Endpoint),
		zap.String("service_name", c.ServiceName),
	}, extra...)
}

// stopPipeline flushes and stops one signal pipeline within limit.
func stopPipeline(ctx context.Context, limit time.Duration, signal string, log *zap.Logger, stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	if err := stop(ctx); err != nil {
		log.Error("Telemetry pipeline did not stop cleanly", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("stop %s pipeline: %w", signal, err)
	}
	log.Info("Telemetry pipeline stopped", zap.String("signal", signal))
	return nil
}

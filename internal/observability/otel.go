// Package observability installs the OpenTelemetry tracer provider used by
// the HTTP middleware, the services and the GORM tracing plugin.
package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-news-backend/internal/config"
)

// Shutdown flushes and stops tracing.
type Shutdown func(context.Context) error

// ErrNoEndpoint is returned when tracing is enabled without a collector.
var ErrNoEndpoint = errors.New("observability: OTLP endpoint is empty")

// test seams
var (
	newOTLPClient = otlptracegrpc.NewClient

	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, client)
	}

	newServiceResourceFn = func(ctx context.Context, serviceName, version, env string) (*resource.Resource, error) {
		return resource.New(
			ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(version),
				semconv.DeploymentEnvironment(env),
			),
			resource.WithHost(),
			resource.WithProcessRuntimeVersion(),
		)
	}
)

func noop(context.Context) error { return nil }

// propagator carries W3C trace context and baggage across requests.
func propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// Setup configures OTLP/gRPC trace export for the news API. When tracing is
// disabled only the propagator is installed, so incoming trace headers still
// reach the request context. Globals are untouched when setup fails.
func Setup(ctx context.Context, cfg config.OTELConfig, version, env string) (Shutdown, error) {
	if !cfg.Enabled {
		otel.SetTextMapPropagator(propagator())
		return noop, nil
	}
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	exp, err := newOTLPExporterFn(ctx, newOTLPClient(opts...))
	if err != nil {
		return nil, err
	}
	res, err := newServiceResourceFn(ctx, cfg.ServiceName, version, env)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator())

	return tp.Shutdown, nil
}

package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

type OtlpConnConfig struct {
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

// Tracer returns a tracer from the global provider, it is a no-op until
// Setup installs an exporting provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Otel holds the providers installed by Setup.
type Otel struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *metric.MeterProvider
}

func (o Otel) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

// Setup installs OTLP/HTTP trace and metric providers for every endpoint
// present in the config. Missing endpoints leave the no-op globals in place.
func Setup(ctx context.Context, serviceName string, config Config) (Otel, error) {
	out := Otel{}
	if config.Otlp.Traces.HttpEndpoint == "" && config.Otlp.Metrics.HttpEndpoint == "" {
		return out, nil
	}

	r, err := newResource(serviceName)
	if err != nil {
		return out, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if config.Otlp.Traces.HttpEndpoint != "" {
		exporter, err := otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(config.Otlp.Traces.HttpEndpoint),
			otlptracehttp.WithHeaders(config.Otlp.Traces.Headers),
		)
		if err != nil {
			return out, err
		}
		out.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(r),
		)
		otel.SetTracerProvider(out.tracerProvider)
		slog.Info(
			"tracer export initialized",
			"type", "http",
			"endpoint", config.Otlp.Traces.HttpEndpoint,
			"headers", len(config.Otlp.Traces.Headers) > 0,
		)
	}

	if config.Otlp.Metrics.HttpEndpoint != "" {
		exporter, err := otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(config.Otlp.Metrics.HttpEndpoint),
			otlpmetrichttp.WithHeaders(config.Otlp.Metrics.Headers),
		)
		if err != nil {
			return out, err
		}
		out.meterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*5))),
			metric.WithResource(r),
		)
		otel.SetMeterProvider(out.meterProvider)
		slog.Info(
			"metric exporter initialized",
			"type", "http",
			"endpoint", config.Otlp.Metrics.HttpEndpoint,
			"headers", len(config.Otlp.Metrics.Headers) > 0,
		)
	}

	return out, nil
}

package config

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Tracing holds CLI flags for OpenTelemetry trace export
type Tracing struct {
	endpoint string
	stdout   bool
}

// Flags returns CLI flags for tracing configuration
func (x *Tracing) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "otlp-endpoint",
			Usage:       "OTLP/HTTP trace endpoint URL (e.g. http://localhost:4318)",
			Category:    "Tracing",
			Sources:     cli.EnvVars("RISKGRAPH_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.BoolFlag{
			Name:        "trace-stdout",
			Usage:       "Write spans to stdout when no OTLP endpoint is set",
			Category:    "Tracing",
			Sources:     cli.EnvVars("RISKGRAPH_TRACE_STDOUT"),
			Destination: &x.stdout,
		},
	}
}

// IsEnabled reports whether spans are exported anywhere
func (x *Tracing) IsEnabled() bool {
	return x.endpoint != "" || x.stdout
}

// Configure installs the global tracer provider. Without an exporter the global
// noop provider is left in place. The returned function flushes pending spans.
func (x *Tracing) Configure(ctx context.Context, version string) (func(context.Context) error, error) {
	return x.configure(ctx, version, os.Stdout)
}

func (x *Tracing) configure(ctx context.Context, version string, w io.Writer) (func(context.Context) error, error) {
	if !x.IsEnabled() {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("riskgraph"),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create trace resource")
	}

	var exporter sdktrace.SpanExporter
	if x.endpoint != "" {
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(x.endpoint))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OTLP exporter", goerr.V("endpoint", x.endpoint))
		}
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create stdout exporter")
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}

package observe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// serviceNamespace groups every Orator deployment in telemetry backends.
const serviceNamespace = "orator"

// Resource attribute keys describing how this instance analyses audio.
const (
	AttrSTTProvider = attribute.Key("orator.stt.provider")
	AttrSTTChain    = attribute.Key("orator.stt.chain")
	AttrSampleRate  = attribute.Key("orator.audio.sample_rate")
)

// ProviderConfig configures the OpenTelemetry SDK providers.
type ProviderConfig struct {
	// ServiceName is service.name. Default: "orator".
	ServiceName    string
	ServiceVersion string

	// Environment is reported as deployment.environment when set.
	Environment string

	// STTChain lists the transcription backends, primary first.
	STTChain []string

	// SampleRate is the canonical decode rate in Hz.
	SampleRate int

	// TraceExporter is optional. Without one spans are recorded but never
	// exported.
	TraceExporter sdktrace.SpanExporter

	// MetricReader replaces the Prometheus exporter.
	MetricReader sdkmetric.Reader
}

// Resource describes this Orator instance: service identity, the host it
// runs on and its transcription setup.
func Resource(cfg ProviderConfig) (*resource.Resource, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "orator"
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceNamespace(serviceNamespace),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	if host, err := os.Hostname(); err == nil {
		attrs = append(attrs, semconv.ServiceInstanceID(host))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	if len(cfg.STTChain) > 0 {
		attrs = append(attrs, AttrSTTProvider.String(cfg.STTChain[0]), AttrSTTChain.StringSlice(cfg.STTChain))
	}
	if cfg.SampleRate > 0 {
		attrs = append(attrs, AttrSampleRate.Int(cfg.SampleRate))
	}
	return resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
}

// InitProvider registers global meter and tracer providers built from cfg.
// Metrics go to the Prometheus exporter, which the default registry serves
// on the metrics path, unless cfg.MetricReader is set.
//
// The returned function flushes and closes both providers.
func InitProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	res, err := Resource(cfg)
	if err != nil {
		return nil, fmt.Errorf("observe: build resource: %w", err)
	}

	reader := cfg.MetricReader
	if reader == nil {
		exp, err := promexporter.New()
		if err != nil {
			return nil, fmt.Errorf("observe: prometheus exporter: %w", err)
		}
		reader = exp
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.TraceExporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// Package observe provides application-wide observability primitives for
// Orator: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Orator metrics.
const meterName = "github.com/MrWong99/orator"

// Pipeline stage names used with [Metrics.RecordStage].
const (
	StageIngest     = "ingest"
	StageTranscribe = "transcribe"
	StageExtract    = "extract"
	StageScore      = "score"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// AnalysisDuration tracks end-to-end analysis latency. Use with attribute:
	//   attribute.String("status", ...)
	AnalysisDuration metric.Float64Histogram

	// StageDuration tracks the latency of one pipeline stage. Use with attribute:
	//   attribute.String("stage", ...)
	StageDuration metric.Float64Histogram

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// --- Counters ---

	// Analyses counts finished analyses. Use with attribute:
	//   attribute.String("status", ...)
	Analyses metric.Int64Counter

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// --- Error counters ---

	// AnalysisErrors counts failed analyses. Use with attribute:
	//   attribute.String("kind", ...)
	AnalysisErrors metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// AdmissionRejected counts requests turned away because every analysis
	// slot was taken.
	AdmissionRejected metric.Int64Counter

	// --- Gauges ---

	// ActiveAnalyses tracks the number of analyses currently running.
	ActiveAnalyses metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time by method,
	// route pattern and status code.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for single
// stages, from sub-second scoring to multi-second transcription.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// analysisBuckets covers whole analyses, which are bounded by the
// analysis timeout.
var analysisBuckets = []float64{
	0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AnalysisDuration, err = m.Float64Histogram("orator.analysis.duration",
		metric.WithDescription("End-to-end latency of one speech analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StageDuration, err = m.Float64Histogram("orator.stage.duration",
		metric.WithDescription("Latency of one analysis pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.STTDuration, err = m.Float64Histogram("orator.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Analyses, err = m.Int64Counter("orator.analyses",
		metric.WithDescription("Total finished analyses by status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("orator.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.AnalysisErrors, err = m.Int64Counter("orator.analysis.errors",
		metric.WithDescription("Total failed analyses by error kind."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("orator.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.AdmissionRejected, err = m.Int64Counter("orator.admission.rejected",
		metric.WithDescription("Total requests rejected because the server was at capacity."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveAnalyses, err = m.Int64UpDownCounter("orator.active_analyses",
		metric.WithDescription("Number of analyses currently running."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("orator.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAnalysis records a finished analysis with its status.
func (m *Metrics) RecordAnalysis(ctx context.Context, status string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.AnalysisDuration.Record(ctx, d.Seconds(), attrs)
	m.Analyses.Add(ctx, 1, attrs)
}

// RecordAnalysisError records a failed analysis by error kind.
func (m *Metrics) RecordAnalysisError(ctx context.Context, kind string) {
	m.AnalysisErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordStage records the latency of one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	m.StageDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordProviderRequest is a convenience method that records a provider
// request counter increment with the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordAdmissionRejected counts a request turned away at admission.
func (m *Metrics) RecordAdmissionRejected(ctx context.Context, reason string) {
	m.AdmissionRejected.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

package observe

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var hexTraceID = regexp.MustCompile(`^[0-9a-f]{32}$`)

// useTracer installs an in-memory tracer provider as the global one.
func useTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(orig)
		_ = tp.Shutdown(context.Background())
	})
	return exp
}

// captureLog routes the default logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return &buf
}

func TestCorrelationID_EmptyWithoutSpan(t *testing.T) {
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("CorrelationID = %q, want empty", got)
	}
}

func TestStartSpan_NestsPipelineStages(t *testing.T) {
	exp := useTracer(t)

	ctx, root := StartSpan(context.Background(), "analysis.Analyze")
	cid := CorrelationID(ctx)
	for _, stage := range []string{"analysis.ingest", "analysis.transcribe", "analysis.extract"} {
		sctx, span := StartSpan(ctx, stage)
		if got := CorrelationID(sctx); got != cid {
			t.Errorf("%s correlation ID = %q, want the root's %q", stage, got, cid)
		}
		span.End()
	}
	root.End()

	if !hexTraceID.MatchString(cid) {
		t.Fatalf("correlation ID = %q, want 32 hex chars", cid)
	}
	spans := exp.GetSpans()
	if len(spans) != 4 {
		t.Fatalf("got %d spans, want 4", len(spans))
	}
	rootID := spans[3].SpanContext.SpanID()
	for _, s := range spans[:3] {
		if s.Parent.SpanID() != rootID {
			t.Errorf("span %q parent = %s, want %s", s.Name, s.Parent.SpanID(), rootID)
		}
	}
	if spans[3].InstrumentationScope.Name != tracerName {
		t.Errorf("scope = %q, want %q", spans[3].InstrumentationScope.Name, tracerName)
	}
}

func TestCorrelationID_UniquePerAnalysis(t *testing.T) {
	useTracer(t)

	seen := make(map[string]bool, 50)
	for range 50 {
		ctx, span := StartSpan(context.Background(), "analysis.Analyze")
		cid := CorrelationID(ctx)
		span.End()
		if seen[cid] {
			t.Fatalf("duplicate correlation ID %s", cid)
		}
		seen[cid] = true
	}
}

func TestLogger(t *testing.T) {
	useTracer(t)
	buf := captureLog(t)

	Logger(context.Background()).Info("no span")
	if bytes.Contains(buf.Bytes(), []byte("trace_id")) {
		t.Errorf("log without span has trace_id: %s", buf)
	}
	buf.Reset()

	ctx, span := StartSpan(context.Background(), "analysis.extract")
	defer span.End()
	Logger(ctx).Warn("voice analysis degraded")

	line := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("trace_id="+CorrelationID(ctx))) {
		t.Errorf("log line missing trace_id: %s", line)
	}
	if !bytes.Contains(buf.Bytes(), []byte("span_id=")) {
		t.Errorf("log line missing span_id: %s", line)
	}
}

package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestProbeMeta_SpanName verifies deterministic span naming.
func TestProbeMeta_SpanName(t *testing.T) {
	meta := ProbeMeta{Name: "database"}

	expected := "health.probe.database"
	if got := meta.SpanName(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// TestTracer_SpanAttributes verifies all attributes are present on span.
func TestTracer_SpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ProbeMeta{
		Name:     "database",
		Type:     "ready",
		Critical: true,
	}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	if s.Name() != "health.probe.database" {
		t.Errorf("expected span name 'health.probe.database', got %q", s.Name())
	}

	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	if v, ok := attrMap["probe.name"]; !ok || v.AsString() != "database" {
		t.Errorf("expected probe.name='database', got %v", v)
	}
	if v, ok := attrMap["probe.critical"]; !ok || !v.AsBool() {
		t.Errorf("expected probe.critical=true, got %v", v)
	}
	if v, ok := attrMap["probe.type"]; !ok || v.AsString() != "ready" {
		t.Errorf("expected probe.type='ready', got %v", v)
	}
	if v, ok := attrMap["probe.error"]; !ok || v.AsBool() {
		t.Errorf("expected probe.error=false, got %v", v)
	}

	if s.Status().Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", s.Status().Code)
	}
}

// TestTracer_SpanAttributesMinimal verifies the type attribute is omitted when empty.
func TestTracer_SpanAttributesMinimal(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ProbeMeta{Name: "database"}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	for _, a := range spans[0].Attributes() {
		if string(a.Key) == "probe.type" {
			t.Errorf("expected no probe.type attribute, got %v", a.Value)
		}
	}
}

// TestTracer_ContextPropagation verifies parent span is propagated.
func TestTracer_ContextPropagation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ProbeMeta{Name: "database"}

	parentCtx, parentSpan := tracer.Start(context.Background(), "parent")

	childCtx, childSpan := tr.StartSpan(parentCtx, meta)
	tr.EndSpan(childSpan, nil)
	parentSpan.End()
	_ = childCtx

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	var child sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "health.probe.database" {
			child = s
			break
		}
	}
	if child == nil {
		t.Fatal("child span not found")
	}

	if child.Parent().TraceID() != parentSpan.SpanContext().TraceID() {
		t.Error("child span should have same trace ID as parent")
	}
	if !child.Parent().SpanID().IsValid() {
		t.Error("child span should have valid parent span ID")
	}
}

// TestTracer_ErrorRecording verifies error sets span status and attribute.
func TestTracer_ErrorRecording(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ProbeMeta{Name: "database"}

	ctx, span := tr.StartSpan(context.Background(), meta)
	testErr := errors.New("connection refused")
	tr.EndSpan(span, testErr)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}

	var probeError bool
	for _, a := range s.Attributes() {
		if string(a.Key) == "probe.error" {
			probeError = a.Value.AsBool()
			break
		}
	}
	if !probeError {
		t.Error("expected probe.error=true")
	}

	if len(s.Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

// TestNoopTracer verifies the no-op tracer produces usable spans.
func TestNoopTracer(t *testing.T) {
	tr := NewNoopTracer()

	ctx, span := tr.StartSpan(context.Background(), ProbeMeta{Name: "database"})
	if ctx == nil || span == nil {
		t.Fatal("noop tracer must return a usable context and span")
	}
	tr.EndSpan(span, errors.New("ignored"))
}

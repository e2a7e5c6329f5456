// Package observability holds the vendor-neutral ports the shop logs, traces
// and counts through. Adapters live under infrastructure/observability.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the three signals a component needs.
type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}

// Metrics resolves instruments by key. Unknown keys yield no-op instruments.
type Metrics interface {
	Counter(name MetricKey) Counter
	Histogram(name MetricKey) Histogram
}

type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

// Counter adds to a labelled series. Bind fixes the labels once so hot paths
// with a constant label set skip the per-call lookup.
type Counter interface {
	Add(delta float64, labels ...Label)
	Bind(labels ...Label) BoundCounter
}

type BoundCounter interface {
	Add(delta float64)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
	Bind(labels ...Label) BoundHistogram
}

type BoundHistogram interface {
	Observe(value float64)
}

// Label is a metric label pair.
type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }

// Field is a structured log field.
type Field struct {
	Key   string
	Value any
}

func F(k string, v any) Field { return Field{Key: k, Value: v} }

type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type MetricKey string

// TraceFields returns trace_id and span_id of the span in ctx, or nil when
// ctx carries no valid span.
func TraceFields(ctx context.Context) []Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []Field{
		F("trace_id", sc.TraceID().String()),
		F("span_id", sc.SpanID().String()),
	}
}

// Use case outcomes recorded in usecase_requests_total.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeIgnored = "ignored"
)

// UseCaseInstruments are usecase_requests_total and usecase_duration_seconds
// bound to one use_case label at construction.
type UseCaseInstruments struct {
	useCase  string
	requests Counter
	outcomes map[string]BoundCounter
	duration BoundHistogram
}

func BindUseCase(m Metrics, useCase string) UseCaseInstruments {
	requests := m.Counter(MUsecaseRequests)
	outcomes := make(map[string]BoundCounter, 3)
	for _, o := range []string{OutcomeSuccess, OutcomeError, OutcomeIgnored} {
		outcomes[o] = requests.Bind(L("use_case", useCase), L("outcome", o))
	}
	return UseCaseInstruments{
		useCase:  useCase,
		requests: requests,
		outcomes: outcomes,
		duration: m.Histogram(MUsecaseDuration).Bind(L("use_case", useCase)),
	}
}

// Count records one invocation with the given outcome.
func (u UseCaseInstruments) Count(outcome string) {
	if c, ok := u.outcomes[outcome]; ok {
		c.Add(1)
		return
	}
	u.requests.Add(1, L("use_case", u.useCase), L("outcome", outcome))
}

// Done records one finished invocation and its latency.
func (u UseCaseInstruments) Done(outcome string, seconds float64) {
	u.Count(outcome)
	u.duration.Observe(seconds)
}

// Package telemetry records conversions as OpenTelemetry metrics and spans.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sambeau/chainfold/pkg/chainfold/chainfold"
	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
)

// Instrument names.
const (
	MetricConversions = "chainfold.conversions"
	MetricDuration    = "chainfold.conversion.duration"
	MetricCalls       = "chainfold.calls"
	SpanConvert       = "chainfold.convert"
)

// Outcome attribute values.
const (
	OutcomeOK     = "ok"
	OutcomeSyntax = "syntax"
	OutcomeType   = "type"
	OutcomeError  = "error"
)

// Observer implements chainfold.Observer on top of a meter and a tracer.
type Observer struct {
	tracer trace.Tracer

	conversions metric.Int64Counter
	calls       metric.Int64Counter
	duration    metric.Float64Histogram
}

var _ chainfold.Observer = (*Observer)(nil)

// New creates an observer bound to the provided meter and tracer.
func New(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	conversions, err := meter.Int64Counter(MetricConversions,
		metric.WithDescription("Number of chain conversions"),
	)
	if err != nil {
		return nil, err
	}
	calls, err := meter.Int64Counter(MetricCalls,
		metric.WithDescription("Number of filter and map calls parsed"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of a conversion in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:      tracer,
		conversions: conversions,
		calls:       calls,
		duration:    duration,
	}, nil
}

// ConversionStarted opens a span for the conversion of input.
func (o *Observer) ConversionStarted(ctx context.Context, input string) context.Context {
	if o == nil {
		return ctx
	}
	ctx, _ = o.tracer.Start(ctx, SpanConvert,
		trace.WithAttributes(attribute.String("chainfold.input", input)),
	)
	return ctx
}

// ConversionFinished records the outcome and ends the span opened by
// ConversionStarted.
func (o *Observer) ConversionFinished(ctx context.Context, outcome chainfold.Outcome) {
	if o == nil {
		return
	}

	kind := OutcomeOf(outcome.Err)
	attrs := metric.WithAttributes(attribute.String("outcome", kind))
	o.conversions.Add(ctx, 1, attrs)
	o.duration.Record(ctx, outcome.Duration.Seconds(), attrs)
	if outcome.Calls > 0 {
		o.calls.Add(ctx, int64(outcome.Calls))
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("chainfold.outcome", kind),
		attribute.Int("chainfold.calls", outcome.Calls),
	)
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
	} else {
		span.SetAttributes(attribute.String("chainfold.output", outcome.Output))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// OutcomeOf maps a conversion error to its outcome attribute value.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch perrors.ClassOf(err) {
	case perrors.ClassSyntax:
		return OutcomeSyntax
	case perrors.ClassType:
		return OutcomeType
	default:
		return OutcomeError
	}
}

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "github.com/sambeau/chainfold"

// Settings configures the providers built by Setup.
type Settings struct {
	ServiceName string
	// Endpoint is an OTLP/HTTP collector, either host:port (plain HTTP) or
	// a full URL. Empty keeps spans in process.
	Endpoint string
}

// Providers owns the SDK tracer and meter providers of one process.
// Metrics are collected on demand through a manual reader.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	reader         *sdkmetric.ManualReader
}

// Setup builds tracer and meter providers for s.
func Setup(ctx context.Context, s Settings) (*Providers, error) {
	name := s.ServiceName
	if name == "" {
		name = "chainfold"
	}
	res := resource.NewSchemaless(attribute.String("service.name", name))

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if s.Endpoint != "" {
		exporter, err := newExporter(ctx, s.Endpoint)
		if err != nil {
			return nil, err
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
	}

	reader := sdkmetric.NewManualReader()
	return &Providers{
		TracerProvider: sdktrace.NewTracerProvider(traceOpts...),
		MeterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)),
		reader:         reader,
	}, nil
}

func newExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	var opts []otlptracehttp.Option
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: otlp exporter: %w", err)
	}
	return exporter, nil
}

// Observer returns a conversion observer wired to p.
func (p *Providers) Observer() (*Observer, error) {
	return New(
		p.MeterProvider.Meter(instrumentationName),
		p.TracerProvider.Tracer(instrumentationName),
	)
}

// Stats collects the conversion metrics recorded so far.
func (p *Providers) Stats(ctx context.Context) (Stats, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return Stats{}, fmt.Errorf("telemetry: collect: %w", err)
	}
	return statsFrom(&rm), nil
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}

// Stats summarizes collected conversion metrics.
type Stats struct {
	Outcomes map[string]int64 // conversions per outcome attribute
	Calls    int64
	Count    uint64  // conversions timed
	Seconds  float64 // total conversion time
}

// Total returns the number of conversions of every outcome.
func (s Stats) Total() int64 {
	var n int64
	for _, v := range s.Outcomes {
		n += v
	}
	return n
}

// Mean returns the mean conversion time.
func (s Stats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return time.Duration(s.Seconds / float64(s.Count) * float64(time.Second))
}

func statsFrom(rm *metricdata.ResourceMetrics) Stats {
	st := Stats{Outcomes: map[string]int64{}}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch m.Name {
			case MetricConversions:
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					for _, dp := range sum.DataPoints {
						outcome, _ := dp.Attributes.Value("outcome")
						st.Outcomes[outcome.AsString()] += dp.Value
					}
				}
			case MetricCalls:
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					for _, dp := range sum.DataPoints {
						st.Calls += dp.Value
					}
				}
			case MetricDuration:
				if hist, ok := m.Data.(metricdata.Histogram[float64]); ok {
					for _, dp := range hist.DataPoints {
						st.Count += dp.Count
						st.Seconds += dp.Sum
					}
				}
			}
		}
	}
	return st
}

// Package observe provides the logging and OpenTelemetry metrics used across
// shutterplan.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exposed to
// Prometheus by [InitProvider]. Tests should build their own [Metrics] with
// [NewMetrics] and a ManualReader-backed MeterProvider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "shutterplan"

// Metrics holds all metric instruments. Safe for concurrent use.
type Metrics struct {
	// DispatchDuration tracks one vendor call, in seconds.
	DispatchDuration metric.Float64Histogram

	// DispatchRequests counts dispatches by provider, model, and status.
	DispatchRequests metric.Int64Counter

	// Tokens counts reported tokens by provider and direction (input/output).
	Tokens metric.Int64Counter

	// CacheLookups counts plan-cache lookups by result (hit/miss/error).
	CacheLookups metric.Int64Counter

	// HTTPRequestDuration tracks request handling time by method, route, and status.
	HTTPRequestDuration metric.Float64Histogram
}

// LLM calls sit in the hundreds of milliseconds to tens of seconds.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60,
}

// NewMetrics creates all instruments on the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.DispatchDuration, err = m.Float64Histogram("shutterplan.dispatch.duration",
		metric.WithDescription("Latency of one LLM vendor call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DispatchRequests, err = m.Int64Counter("shutterplan.dispatch.requests",
		metric.WithDescription("LLM dispatches by provider, model, and status."),
	); err != nil {
		return nil, err
	}
	if met.Tokens, err = m.Int64Counter("shutterplan.dispatch.tokens",
		metric.WithDescription("Tokens reported by vendors, by provider and direction."),
	); err != nil {
		return nil, err
	}
	if met.CacheLookups, err = m.Int64Counter("shutterplan.plancache.lookups",
		metric.WithDescription("Plan cache lookups by result."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("shutterplan.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route, and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics built on the global
// MeterProvider. Call it after InitProvider so instruments bind to the SDK.
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

// RecordDispatch records one dispatch outcome. Nil token counts are skipped.
func (m *Metrics) RecordDispatch(ctx context.Context, provider, model, status string, seconds float64, inputTokens, outputTokens *int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.String("status", status),
	)
	m.DispatchRequests.Add(ctx, 1, attrs)
	m.DispatchDuration.Record(ctx, seconds, attrs)

	if inputTokens != nil {
		m.Tokens.Add(ctx, int64(*inputTokens), metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("direction", "input"),
		))
	}
	if outputTokens != nil {
		m.Tokens.Add(ctx, int64(*outputTokens), metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("direction", "output"),
		))
	}
}

// RecordCacheLookup records a plan-cache lookup result.
func (m *Metrics) RecordCacheLookup(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordHTTPRequest records one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}

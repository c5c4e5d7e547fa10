// Package tracking records spans and metrics for outbound calls.
package tracking

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InstrumentationName names the tracer and meter scope.
	InstrumentationName = "zephyr/http-client"

	// Metric names following OpenTelemetry semantic conventions v1.38.0
	MetricRequestDuration = "http.client.request.duration" // Histogram in seconds
	MetricRequests        = "http.client.requests"         // Counter

	attrHTTPRequestMethod  = "http.request.method"
	attrHTTPResponseStatus = "http.response.status_code"
	attrServerAddress      = "server.address"
	attrURLScheme          = "url.scheme"
	attrURLFull            = "url.full"
	attrErrorType          = "error.type"
	attrOutcome            = "zephyr.outcome"
	attrRetryable          = "zephyr.retryable"
)

// Outcome values.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

var durationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
}

// Recorder owns the tracer and instruments for one client.
type Recorder struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
}

// New creates a Recorder. Nil providers fall back to the global ones.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Recorder {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(InstrumentationName)
	r := &Recorder{tracer: tp.Tracer(InstrumentationName)}

	var err error
	r.duration, err = meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("Duration of outbound HTTP requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	logMetricError(MetricRequestDuration, err)

	r.requests, err = meter.Int64Counter(
		MetricRequests,
		metric.WithDescription("Number of outbound HTTP request attempts"),
		metric.WithUnit("{request}"),
	)
	logMetricError(MetricRequests, err)

	return r
}

// logMetricError logs a metric initialization error to stderr.
// Metric failures never fail a request.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize HTTP client metric %s: %v\n", metricName, err)
	}
}

// Start opens the client span for one attempt.
func (r *Recorder) Start(ctx context.Context, method, target string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(requestAttributes(method, target)...),
	)
}

// Result describes a finished attempt.
type Result struct {
	Method     string
	URL        string
	StatusCode int
	Elapsed    time.Duration
	Succeeded  bool
	Retryable  bool
	TimedOut   bool
	Err        error
}

// Finish records metrics and ends span.
func (r *Recorder) Finish(ctx context.Context, span trace.Span, res Result) {
	attrs := resultAttributes(res)

	if r.duration != nil {
		r.duration.Record(ctx, res.Elapsed.Seconds(), metric.WithAttributes(attrs...))
	}
	if r.requests != nil {
		r.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if res.StatusCode > 0 {
		span.SetAttributes(attribute.Int(attrHTTPResponseStatus, res.StatusCode))
	}
	span.SetAttributes(attribute.Bool(attrRetryable, res.Retryable))
	if !res.Succeeded {
		if res.Err != nil {
			span.RecordError(res.Err)
		}
		span.SetStatus(codes.Error, errorType(res))
	}
	span.End()
}

func requestAttributes(method, target string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(attrHTTPRequestMethod, method),
		attribute.String(attrURLFull, redactURL(target)),
	}
	if u, err := url.Parse(target); err == nil {
		attrs = append(attrs,
			attribute.String(attrURLScheme, u.Scheme),
			attribute.String(attrServerAddress, u.Hostname()),
		)
	}
	return attrs
}

// resultAttributes keeps cardinality low: no URL, only method, status and
// outcome.
func resultAttributes(res Result) []attribute.KeyValue {
	outcome := OutcomeSucceeded
	if !res.Succeeded {
		outcome = OutcomeFailed
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrHTTPRequestMethod, res.Method),
		attribute.Int(attrHTTPResponseStatus, res.StatusCode),
		attribute.String(attrOutcome, outcome),
	}
	if et := errorType(res); et != "" {
		attrs = append(attrs, attribute.String(attrErrorType, et))
	}
	return attrs
}

// errorType classifies a failed attempt per OTel conventions: "timeout" or
// the status code as a string.
func errorType(res Result) string {
	switch {
	case res.Succeeded:
		return ""
	case res.TimedOut:
		return "timeout"
	default:
		return strconv.Itoa(res.StatusCode)
	}
}

// redactURL drops userinfo from target.
func redactURL(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.User == nil {
		return target
	}
	u.User = nil
	return u.String()
}

package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apihelper/version"
)

// Operation tracks one API call or token exchange across its span and
// metrics.
type Operation struct {
	Provider string
	Method   string
	Start    time.Time

	span    trace.Span
	metrics *Metrics
}

// StartOperation starts a span named spanName for a provider call. metrics
// may be nil.
func StartOperation(ctx context.Context, spanName, provider, method string, metrics *Metrics) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrProvider, provider),
			attribute.String(AttrMethod, method),
		),
	)
	return ctx, &Operation{
		Provider: provider,
		Method:   method,
		Start:    time.Now(),
		span:     span,
		metrics:  metrics,
	}
}

// End closes the span. code is the error code of err, empty on success.
func (op *Operation) End(ctx context.Context, err error, code string) {
	op.span.SetAttributes(attribute.Int64(AttrDurationMs, op.Duration().Milliseconds()))
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		if code != "" {
			op.span.SetAttributes(attribute.String(AttrErrorCode, code))
		}
		op.metrics.RecordError(ctx, op.Provider, code)
	}
	op.span.End()
}

// Duration returns the time elapsed since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.Start)
}

func defaultServiceVersion() string {
	return version.Library
}

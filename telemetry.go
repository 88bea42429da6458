package mongoqx

import (
	"context"
	"time"

	"github.com/mongoqx/mongoqx/contrib/atomiccowcache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/mongoqx/mongoqx",
	trace.WithInstrumentationVersion(buildVersion))

var queryAttribsCache = atomiccowcache.NewCache(
	func(queryType QueryType) attribute.Set {
		return attribute.NewSet(
			semconv.DBSystemMongoDB,
			semconv.DBOperationName(queryType.String()))
	})

type queryTelemOp struct {
	startTime time.Time
	span      trace.Span
	attribs   attribute.Set
}

func beginQueryTelem(ctx context.Context, queryType QueryType) (context.Context, *queryTelemOp) {
	startTime := time.Now()

	ctx, span := tracer.Start(ctx, "mongodb/"+queryType.String(),
		trace.WithSpanKind(trace.SpanKindClient))
	if span.IsRecording() {
		span.SetAttributes(
			semconv.DBSystemMongoDB,
			semconv.DBOperationName(queryType.String()))
	}

	return ctx, &queryTelemOp{
		startTime: startTime,
		span:      span,
		attribs:   queryAttribsCache.Get(queryType),
	}
}

func (op *queryTelemOp) End(err error) {
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	}
	op.span.End()

	duration := time.Since(op.startTime)

	attribs := metric.WithAttributeSet(op.attribs)
	queriesDispatched.Add(context.Background(), 1, attribs)
	queryDurations.Record(context.Background(), duration.Seconds(), attribs)
}

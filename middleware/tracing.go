package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reecejunior/newrouteplanner/upload"
)

// tracerName is the instrumentation scope name for upload queue tracing.
const tracerName = "github.com/reecejunior/newrouteplanner"

// Tracing returns middleware that wraps the extraction call in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through
// with zero overhead.
//
// Span attributes include: upload.id, upload.media_type,
// upload.payload_size, upload.retry_count. On error, the span status is
// set to codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, u *upload.Upload, next Handler) error {
		ctx, span := tracer.Start(ctx, "routeplanner.upload.extract",
			trace.WithAttributes(
				attribute.String("upload.id", u.ID.String()),
				attribute.String("upload.media_type", u.MediaType),
				attribute.Int("upload.payload_size", len(u.Payload)),
				attribute.Int("upload.retry_count", u.RetryCount),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}

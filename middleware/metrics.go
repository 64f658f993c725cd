package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/reecejunior/newrouteplanner/upload"
)

// meterName is the instrumentation scope name for upload queue metrics.
const meterName = "github.com/reecejunior/newrouteplanner"

// Metrics returns middleware that records per-upload execution metrics
// using the global OTel MeterProvider. If no MeterProvider is configured,
// noop instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - routeplanner.upload.duration (Float64Histogram): extraction time in
//     seconds, with attributes: media_type, status ("ok" or "error")
//   - routeplanner.upload.extractions (Int64Counter): total extraction
//     calls, with attributes: media_type, status ("ok" or "error")
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"routeplanner.upload.duration",
		metric.WithDescription("Duration of address extraction in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	extractions, eErr := meter.Int64Counter(
		"routeplanner.upload.extractions",
		metric.WithDescription("Total number of extraction calls"),
		metric.WithUnit("{extraction}"),
	)
	_ = eErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, u *upload.Upload, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("media_type", u.MediaType),
			attribute.String("status", status),
		)

		duration.Record(ctx, elapsed, attrs)
		extractions.Add(ctx, 1, attrs)

		return err
	}
}

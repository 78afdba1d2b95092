package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	requestCounter metric.Int64Counter
	tokenCounter   metric.Int64Counter
	pageCounter    metric.Int64Counter
	imageCounter   metric.Int64Counter
)

func init() {
	meter := otel.Meter(scope)

	requestCounter, _ = meter.Int64Counter("scanpress.provider.requests",
		metric.WithDescription("OCR provider requests"),
	)

	tokenCounter, _ = meter.Int64Counter("scanpress.provider.tokens",
		metric.WithDescription("Tokens consumed by OCR providers"),
	)

	pageCounter, _ = meter.Int64Counter("scanpress.document.pages",
		metric.WithDescription("Pages converted"),
	)

	imageCounter, _ = meter.Int64Counter("scanpress.document.images",
		metric.WithDescription("Images extracted"),
	)
}

func recordRequest(ctx context.Context, provider, model string, err error) {
	requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.Bool("error", err != nil),
	))
}

func recordTokens(ctx context.Context, provider, model string, input, output int) {
	if input > 0 {
		tokenCounter.Add(ctx, int64(input), metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("model", model),
			attribute.String("type", "input"),
		))
	}

	if output > 0 {
		tokenCounter.Add(ctx, int64(output), metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("model", model),
			attribute.String("type", "output"),
		))
	}
}

// RecordConversion counts the pages and images of a finished document.
func RecordConversion(ctx context.Context, model string, pages, images int) {
	attrs := metric.WithAttributes(attribute.String("model", model))

	pageCounter.Add(ctx, int64(pages), attrs)
	imageCounter.Add(ctx, int64(images), attrs)
}

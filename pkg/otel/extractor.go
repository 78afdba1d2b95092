package otel

import (
	"context"

	"github.com/adrianliechti/scanpress/pkg/extractor"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Extractor interface {
	extractor.Provider
}

type observableExtractor struct {
	provider string
	model    string

	extractor extractor.Provider
}

func NewExtractor(provider, model string, e extractor.Provider) Extractor {
	return &observableExtractor{
		provider: provider,
		model:    model,

		extractor: e,
	}
}

func (e *observableExtractor) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	ctx, span := otel.Tracer(scope).Start(ctx, "extract "+e.model, trace.WithAttributes(
		attribute.String("provider", e.provider),
		attribute.String("model", e.model),
		attribute.String("file.content_type", file.ContentType),
		attribute.Int("file.size", len(file.Content)),
	))

	defer span.End()

	result, err := e.extractor.Extract(ctx, file, options)

	recordRequest(ctx, e.provider, e.model, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("document.pages", len(result.Pages)))

	return result, nil
}

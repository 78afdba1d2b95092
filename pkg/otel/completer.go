package otel

import (
	"context"

	"github.com/adrianliechti/scanpress/pkg/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Completer interface {
	provider.Completer
}

type observableCompleter struct {
	provider string
	model    string

	completer provider.Completer
}

// NewCompleter traces and counts every call of completer.
func NewCompleter(provider, model string, completer provider.Completer) Completer {
	return &observableCompleter{
		provider: provider,
		model:    model,

		completer: completer,
	}
}

func (c *observableCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	ctx, span := otel.Tracer(scope).Start(ctx, "complete "+c.model, trace.WithAttributes(
		attribute.String("gen_ai.system", c.provider),
		attribute.String("gen_ai.request.model", c.model),
	))

	defer span.End()

	result, err := c.completer.Complete(ctx, messages, options)

	recordRequest(ctx, c.provider, c.model, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	if u := result.Usage; u != nil {
		span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", u.InputTokens),
			attribute.Int("gen_ai.usage.output_tokens", u.OutputTokens),
		)

		recordTokens(ctx, c.provider, c.model, u.InputTokens, u.OutputTokens)
	}

	return result, nil
}

package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/adrianliechti/scanpress/pkg/provider"

	"google.golang.org/genai"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	*Config
	models *genai.Models
}

func NewCompleter(url, model string, options ...Option) (*Completer, error) {
	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	client, err := genai.NewClient(context.Background(), cfg.clientConfig())

	if err != nil {
		return nil, err
	}

	return &Completer{
		Config: cfg,
		models: client.Models,
	}, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	contents, config, err := c.convertRequest(messages, options)

	if err != nil {
		return nil, err
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)

	if err != nil {
		return nil, convertError(err)
	}

	result := &provider.Completion{
		ID:    resp.ResponseID,
		Model: c.model,

		Reason: provider.CompletionReasonStop,

		Message: &provider.Message{
			Role: provider.MessageRoleAssistant,
		},
	}

	if text := resp.Text(); text != "" {
		result.Message.Content = append(result.Message.Content, provider.TextContent(text))
	}

	if len(resp.Candidates) > 0 {
		result.Reason = toCompletionReason(resp.Candidates[0].FinishReason)
	}

	if m := resp.UsageMetadata; m != nil {
		result.Usage = &provider.Usage{
			InputTokens:  int(m.PromptTokenCount),
			OutputTokens: int(m.CandidatesTokenCount),
			TotalTokens:  int(m.TotalTokenCount),
		}
	}

	return result, nil
}

func (c *Completer) convertRequest(messages []provider.Message, options *provider.CompleteOptions) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{}

	if options.MaxTokens != nil {
		config.MaxOutputTokens = int32(*options.MaxTokens)
	}

	if options.Temperature != nil {
		config.Temperature = genai.Ptr(*options.Temperature)
	}

	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case provider.MessageRoleSystem:
			config.SystemInstruction = genai.NewContentFromText(m.Content.String(), genai.RoleUser)

		case provider.MessageRoleUser:
			var parts []*genai.Part

			for _, c := range m.Content {
				if c.File != nil {
					switch c.File.ContentType {
					case "image/png", "image/jpeg", "image/webp", "image/gif", "application/pdf":
						parts = append(parts, genai.NewPartFromBytes(c.File.Content, c.File.ContentType))

					default:
						return nil, nil, fmt.Errorf("unsupported content type %q", c.File.ContentType)
					}
				}

				if c.Text != "" {
					parts = append(parts, genai.NewPartFromText(c.Text))
				}
			}

			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

		case provider.MessageRoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content.String(), genai.RoleModel))
		}
	}

	return contents, config, nil
}

func toCompletionReason(reason genai.FinishReason) provider.CompletionReason {
	switch reason {
	case genai.FinishReasonMaxTokens:
		return provider.CompletionReasonLength

	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonProhibitedContent:
		return provider.CompletionReasonFilter
	}

	return provider.CompletionReasonStop
}

func convertError(err error) error {
	var apierr genai.APIError

	if errors.As(err, &apierr) {
		return &provider.Error{
			StatusCode: apierr.Code,
			Message:    apierr.Message,
		}
	}

	return err
}

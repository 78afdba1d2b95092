package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/adrianliechti/scanpress/pkg/provider"

	"github.com/openai/openai-go/v3"
)

var _ provider.Completer = (*Completer)(nil)

// Completer talks to any OpenAI compatible chat completions endpoint, such as
// a LiteLLM gateway in front of DeepSeek-OCR.
type Completer struct {
	*Config
	completions openai.ChatCompletionService
}

func NewCompleter(url, model string, options ...Option) (*Completer, error) {
	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Completer{
		Config:      cfg,
		completions: openai.NewChatCompletionService(cfg.Options()...),
	}, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req, err := c.convertCompletionRequest(messages, options)

	if err != nil {
		return nil, err
	}

	resp, err := c.completions.New(ctx, *req)

	if err != nil {
		return nil, convertError(err)
	}

	result := &provider.Completion{
		ID:    resp.ID,
		Model: resp.Model,

		Reason: provider.CompletionReasonStop,

		Message: &provider.Message{
			Role: provider.MessageRoleAssistant,
		},

		Usage: &provider.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]

		result.Reason = toCompletionReason(string(choice.FinishReason))

		if choice.Message.Content != "" {
			result.Message.Content = append(result.Message.Content, provider.TextContent(choice.Message.Content))
		}
	}

	return result, nil
}

func (c *Completer) convertCompletionRequest(messages []provider.Message, options *provider.CompleteOptions) (*openai.ChatCompletionNewParams, error) {
	input, err := convertMessages(messages)

	if err != nil {
		return nil, err
	}

	req := &openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),

		Messages: input,
	}

	if options.MaxTokens != nil {
		req.MaxTokens = openai.Int(int64(*options.MaxTokens))
	}

	if options.Temperature != nil {
		req.Temperature = openai.Float(float64(*options.Temperature))
	}

	return req, nil
}

func convertMessages(messages []provider.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	var result []openai.ChatCompletionMessageParamUnion

	for _, m := range messages {
		switch m.Role {
		case provider.MessageRoleSystem:
			result = append(result, openai.SystemMessage(m.Content.String()))

		case provider.MessageRoleUser:
			var parts []openai.ChatCompletionContentPartUnionParam

			for _, c := range m.Content {
				if c.File != nil {
					part, err := convertFile(c.File)

					if err != nil {
						return nil, err
					}

					parts = append(parts, part)
				}

				if c.Text != "" {
					parts = append(parts, openai.TextContentPart(c.Text))
				}
			}

			result = append(result, openai.UserMessage(parts))

		case provider.MessageRoleAssistant:
			result = append(result, openai.AssistantMessage(m.Content.String()))
		}
	}

	return result, nil
}

func convertFile(file *provider.File) (openai.ChatCompletionContentPartUnionParam, error) {
	mime := file.ContentType
	url := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(file.Content)

	switch mime {
	case "image/png", "image/jpeg", "image/webp", "image/gif":
		return openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: url,
		}), nil

	case "application/pdf":
		name := file.Name

		if name == "" {
			name = "document.pdf"
		}

		return openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String(url),
			Filename: openai.String(name),
		}), nil
	}

	return openai.ChatCompletionContentPartUnionParam{}, fmt.Errorf("unsupported content type %q", mime)
}

func toCompletionReason(reason string) provider.CompletionReason {
	switch reason {
	case "length":
		return provider.CompletionReasonLength

	case "content_filter":
		return provider.CompletionReasonFilter
	}

	return provider.CompletionReasonStop
}

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		return &provider.Error{
			StatusCode: apierr.StatusCode,
			Message:    apierr.Message,
		}
	}

	return err
}

package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/adrianliechti/scanpress/pkg/provider"

	"github.com/anthropics/anthropic-sdk-go"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	*Config
	messages anthropic.MessageService
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
		Config:   cfg,
		messages: anthropic.NewMessageService(cfg.Options()...),
	}, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req, err := c.convertMessageRequest(messages, options)

	if err != nil {
		return nil, err
	}

	message, err := c.messages.New(ctx, *req)

	if err != nil {
		return nil, convertError(err)
	}

	result := &provider.Completion{
		ID:    message.ID,
		Model: c.model,

		Reason: toCompletionReason(message.StopReason),

		Message: &provider.Message{
			Role: provider.MessageRoleAssistant,
		},

		Usage: &provider.Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			result.Message.Content = append(result.Message.Content, provider.TextContent(block.Text))
		}
	}

	return result, nil
}

func (c *Completer) convertMessageRequest(input []provider.Message, options *provider.CompleteOptions) (*anthropic.MessageNewParams, error) {
	req := &anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(4096),
	}

	if options.MaxTokens != nil {
		req.MaxTokens = int64(*options.MaxTokens)
	}

	if options.Temperature != nil {
		req.Temperature = anthropic.Float(float64(*options.Temperature))
	}

	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, m := range input {
		switch m.Role {
		case provider.MessageRoleSystem:
			for _, c := range m.Content {
				if c.Text != "" {
					system = append(system, anthropic.TextBlockParam{Text: c.Text})
				}
			}

		case provider.MessageRoleUser:
			var blocks []anthropic.ContentBlockParamUnion

			for _, c := range m.Content {
				if c.File != nil {
					block, err := convertFile(c.File)

					if err != nil {
						return nil, err
					}

					blocks = append(blocks, block)
				}

				if c.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(c.Text))
				}
			}

			messages = append(messages, anthropic.NewUserMessage(blocks...))

		case provider.MessageRoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content.String())))
		}
	}

	if len(system) > 0 {
		req.System = system
	}

	req.Messages = messages

	return req, nil
}

func convertFile(file *provider.File) (anthropic.ContentBlockParamUnion, error) {
	mime := file.ContentType
	data := base64.StdEncoding.EncodeToString(file.Content)

	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return anthropic.NewImageBlockBase64(mime, data), nil

	case "application/pdf":
		block := anthropic.DocumentBlockParam{
			Source: anthropic.DocumentBlockParamSourceUnion{
				OfBase64: &anthropic.Base64PDFSourceParam{
					Data: data,
				},
			},
		}

		return anthropic.ContentBlockParamUnion{OfDocument: &block}, nil
	}

	return anthropic.ContentBlockParamUnion{}, fmt.Errorf("unsupported content type %q", mime)
}

func toCompletionReason(reason anthropic.StopReason) provider.CompletionReason {
	switch reason {
	case anthropic.StopReasonMaxTokens:
		return provider.CompletionReasonLength

	case anthropic.StopReasonRefusal:
		return provider.CompletionReasonFilter
	}

	return provider.CompletionReasonStop
}

func convertError(err error) error {
	var apierr *anthropic.Error

	if errors.As(err, &apierr) {
		return &provider.Error{
			StatusCode: apierr.StatusCode,
			Message:    apierr.Error(),
		}
	}

	return err
}

//go:build ocr

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/extractor"

	"github.com/otiai10/gosseract/v2"
)

var _ extractor.Provider = (*Client)(nil)

// Client recognizes single images with a local Tesseract installation.
type Client struct {
	languages []string

	clientFactory func() *gosseract.Client
}

type Option func(*Client)

func WithLanguages(languages ...string) Option {
	return func(c *Client) {
		c.languages = languages
	}
}

func New(options ...Option) (*Client, error) {
	c := &Client{
		clientFactory: gosseract.NewClient,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	if !supported(file.ContentType) {
		return nil, extractor.ErrUnsupported
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := c.clientFactory()
	defer client.Close()

	if len(c.languages) > 0 {
		if err := client.SetLanguage(c.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}

	if err := client.SetImageFromBytes(file.Content); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()

	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	return &extractor.Document{
		Model: "tesseract",

		Pages: []extractor.Page{
			{
				Text: strings.TrimSpace(text),
			},
		},
	}, nil
}

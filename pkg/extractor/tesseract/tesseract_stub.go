//go:build !ocr

package tesseract

import (
	"context"
	"errors"

	"github.com/adrianliechti/scanpress/pkg/extractor"
)

var _ extractor.Provider = (*Client)(nil)

var ErrNotBuilt = errors.New("tesseract support requires the ocr build tag")

type Client struct{}

type Option func(*Client)

func WithLanguages(languages ...string) Option {
	return func(c *Client) {}
}

func New(options ...Option) (*Client, error) {
	return nil, ErrNotBuilt
}

func (c *Client) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	return nil, ErrNotBuilt
}

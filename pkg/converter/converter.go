package converter

import (
	"errors"
	"log/slog"

	"github.com/adrianliechti/scanpress/pkg/document"
	"github.com/adrianliechti/scanpress/pkg/extractor"
	"github.com/adrianliechti/scanpress/pkg/figure"
	"github.com/adrianliechti/scanpress/pkg/grounding"
	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/pkg/raster"

	"golang.org/x/time/rate"
)

const (
	DefaultDocumentPrompt = "<|grounding|>Convert the document to markdown."
	DefaultImagePrompt    = "Free OCR."

	DefaultMaxTokens = 4096
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text extracted")
	ErrNoProvider      = errors.New("no ocr provider configured")
)

type File = provider.File

type Result struct {
	PDF      []byte
	Markdown string

	Images document.Images

	Pages int
	Usage provider.Usage

	Model string
}

// Converter runs a scanned document through an OCR provider and reassembles
// the result into a new PDF.
type Converter struct {
	logger *slog.Logger

	model string

	completer provider.Completer
	extractor extractor.Provider

	rasterizer raster.Rasterizer

	parser  *grounding.Parser
	figures *figure.Extractor

	documentOptions []document.Option

	dpi         int
	concurrency int
	limiter     *rate.Limiter

	maxTokens   int
	temperature float32

	documentPrompt string
	imagePrompt    string
}

type Option func(*Converter)

func New(options ...Option) (*Converter, error) {
	c := &Converter{
		logger: slog.Default(),

		dpi:         raster.DefaultDPI,
		concurrency: 1,

		maxTokens: DefaultMaxTokens,

		documentPrompt: DefaultDocumentPrompt,
		imagePrompt:    DefaultImagePrompt,
	}

	for _, option := range options {
		option(c)
	}

	if c.completer == nil && c.extractor == nil {
		return nil, ErrNoProvider
	}

	if c.rasterizer == nil {
		c.rasterizer = raster.NewPoppler(raster.WithPopplerLogger(c.logger))
	}

	if c.parser == nil {
		c.parser = grounding.NewParser(grounding.WithLogger(c.logger))
	}

	if c.figures == nil {
		c.figures = figure.New(figure.WithLogger(c.logger))
	}

	return c, nil
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithCompleter selects a chat-style model that answers with grounded
// markdown per page.
func WithCompleter(model string, completer provider.Completer) Option {
	return func(c *Converter) {
		c.model = model
		c.completer = completer
		c.extractor = nil
	}
}

// WithExtractor selects a document OCR service that returns markdown and
// images directly.
func WithExtractor(model string, extractor extractor.Provider) Option {
	return func(c *Converter) {
		c.model = model
		c.extractor = extractor
		c.completer = nil
	}
}

func WithRasterizer(rasterizer raster.Rasterizer) Option {
	return func(c *Converter) {
		c.rasterizer = rasterizer
	}
}

func WithParser(parser *grounding.Parser) Option {
	return func(c *Converter) {
		c.parser = parser
	}
}

func WithFigureExtractor(figures *figure.Extractor) Option {
	return func(c *Converter) {
		c.figures = figures
	}
}

func WithDocumentOptions(options ...document.Option) Option {
	return func(c *Converter) {
		c.documentOptions = append(c.documentOptions, options...)
	}
}

func WithDPI(dpi int) Option {
	return func(c *Converter) {
		if dpi > 0 {
			c.dpi = dpi
		}
	}
}

// WithConcurrency bounds the number of pages submitted at once.
func WithConcurrency(concurrency int) Option {
	return func(c *Converter) {
		if concurrency > 0 {
			c.concurrency = concurrency
		}
	}
}

// WithRateLimit caps provider requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Converter) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}

		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Converter) {
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Converter) {
		c.temperature = temperature
	}
}

// WithPrompts overrides the prompts for PDF pages and standalone images.
// Empty values keep the defaults.
func WithPrompts(document, image string) Option {
	return func(c *Converter) {
		if document != "" {
			c.documentPrompt = document
		}

		if image != "" {
			c.imagePrompt = image
		}
	}
}

func (c *Converter) Model() string {
	return c.model
}

package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/document"
	"github.com/adrianliechti/scanpress/pkg/extractor"
	"github.com/adrianliechti/scanpress/pkg/grounding"
	"github.com/adrianliechti/scanpress/pkg/markdown"
	"github.com/adrianliechti/scanpress/pkg/otel"
	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/pkg/raster"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type content struct {
	markdown string
	images   document.Images

	pages int
	usage provider.Usage
}

// Convert extracts the text and figures of file and assembles them into a
// new PDF. Nothing is returned unless the whole document succeeded.
func (c *Converter) Convert(ctx context.Context, file File) (*Result, error) {
	contentType, err := DetectType(file.Name, file.Content)

	if err != nil {
		return nil, err
	}

	file.ContentType = contentType

	logger := c.logger.With("run", uuid.NewString(), "file", file.Name, "model", c.model)
	logger.Info("converting document", "type", contentType, "size", len(file.Content))

	var result *content

	if c.extractor != nil {
		result, err = c.extractDocument(ctx, logger, file)
	} else {
		result, err = c.completeDocument(ctx, logger, file)
	}

	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(result.markdown) == "" {
		return nil, ErrNoText
	}

	options := []document.Option{
		document.WithLogger(logger),
	}

	options = append(options, c.documentOptions...)
	options = append(options, document.WithModel(c.model))

	pdf, err := document.New(options...).Assemble(result.markdown, result.images)

	if err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}

	otel.RecordConversion(ctx, c.model, result.pages, len(result.images))

	logger.Info("converted document", "pages", result.pages, "images", len(result.images), "characters", len(result.markdown))

	return &Result{
		PDF:      pdf,
		Markdown: result.markdown,

		Images: result.images,

		Pages: result.pages,
		Usage: result.usage,

		Model: c.model,
	}, nil
}

func (c *Converter) pages(ctx context.Context, file File) ([]raster.Page, error) {
	if IsImage(file.ContentType) {
		return []raster.Page{
			{
				Index: 0,

				Content:     file.Content,
				ContentType: file.ContentType,
			},
		}, nil
	}

	pages, err := c.rasterizer.Rasterize(ctx, file.Content, c.dpi)

	if err != nil {
		return nil, fmt.Errorf("rasterize pdf: %w", err)
	}

	return pages, nil
}

// forEachPage runs fn for every page with bounded concurrency and the
// configured rate limit. The first failure cancels the remaining pages.
func (c *Converter) forEachPage(ctx context.Context, pages []raster.Page, fn func(ctx context.Context, i int, page raster.Page) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return err
				}
			}

			if err := fn(ctx, i, page); err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}

			return nil
		})
	}

	return g.Wait()
}

func (c *Converter) completeDocument(ctx context.Context, logger *slog.Logger, file File) (*content, error) {
	pages, err := c.pages(ctx, file)

	if err != nil {
		return nil, err
	}

	prompt := c.documentPrompt

	if IsImage(file.ContentType) {
		prompt = c.imagePrompt
	}

	maxTokens := c.maxTokens
	temperature := c.temperature

	options := &provider.CompleteOptions{
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	answers := make([]*provider.Completion, len(pages))

	err = c.forEachPage(ctx, pages, func(ctx context.Context, i int, page raster.Page) error {
		input := provider.File{
			Name: fmt.Sprintf("page-%d", i+1),

			Content:     page.Content,
			ContentType: page.ContentType,
		}

		completion, err := c.completer.Complete(ctx, []provider.Message{provider.UserMessage(prompt, input)}, options)

		if err != nil {
			return err
		}

		logger.Debug("page recognized", "page", i+1, "characters", len(completion.Text()))

		answers[i] = completion
		return nil
	})

	if err != nil {
		return nil, err
	}

	result := &content{
		images: document.Images{},
		pages:  len(pages),
	}

	var texts []string

	for i, page := range pages {
		result.usage.Add(answers[i].Usage)

		text := c.resolvePage(logger, answers[i].Text(), page, i+1, result.images)
		texts = append(texts, text)
	}

	result.markdown = markdown.Join(texts)

	return result, nil
}

// resolvePage crops the figures a page answer refers to and rewrites the
// answer into plain markdown.
func (c *Converter) resolvePage(logger *slog.Logger, text string, page raster.Page, number int, images document.Images) string {
	refs := c.parser.Parse(text)

	if hasImages(refs) {
		img, err := raster.Decode(page.Content)

		if err != nil {
			logger.Warn("could not decode page raster", "page", number, "error", err)
		} else {
			for _, f := range c.figures.Extract(img, refs, number) {
				images[f.ID] = f.Content
			}
		}
	}

	return markdown.Normalize(text, refs)
}

func hasImages(refs []grounding.Reference) bool {
	for _, r := range refs {
		if r.IsImage() {
			return true
		}
	}

	return false
}

func (c *Converter) extractDocument(ctx context.Context, logger *slog.Logger, file File) (*content, error) {
	doc, err := c.extractor.Extract(ctx, file, &extractor.ExtractOptions{Images: true})

	if errors.Is(err, extractor.ErrUnsupported) && !IsImage(file.ContentType) {
		logger.Info("provider does not read pdfs, submitting pages")
		return c.extractPages(ctx, logger, file)
	}

	if err != nil {
		return nil, err
	}

	result := &content{
		markdown: doc.Text(),
		images:   doc.Images(),

		pages: len(doc.Pages),
	}

	result.usage.Add(doc.Usage)

	return result, nil
}

func (c *Converter) extractPages(ctx context.Context, logger *slog.Logger, file File) (*content, error) {
	pages, err := c.pages(ctx, file)

	if err != nil {
		return nil, err
	}

	docs := make([]*extractor.Document, len(pages))

	err = c.forEachPage(ctx, pages, func(ctx context.Context, i int, page raster.Page) error {
		input := extractor.File{
			Name: fmt.Sprintf("page-%d", i+1),

			Content:     page.Content,
			ContentType: page.ContentType,
		}

		doc, err := c.extractor.Extract(ctx, input, &extractor.ExtractOptions{Images: true})

		if err != nil {
			return err
		}

		docs[i] = doc
		return nil
	})

	if err != nil {
		return nil, err
	}

	result := &content{
		images: document.Images{},
		pages:  len(pages),
	}

	var texts []string

	for _, doc := range docs {
		texts = append(texts, doc.Text())

		for id, data := range doc.Images() {
			if _, exists := result.images[id]; exists {
				logger.Warn("duplicate image id", "id", id)
				continue
			}

			result.images[id] = data
		}

		result.usage.Add(doc.Usage)
	}

	result.markdown = markdown.Join(texts)

	return result, nil
}

package converter_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/adrianliechti/scanpress/pkg/converter"
	"github.com/adrianliechti/scanpress/pkg/document"
	"github.com/adrianliechti/scanpress/pkg/extractor"
	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/pkg/raster"

	"github.com/stretchr/testify/require"
)

func pagePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

type fakeRasterizer struct {
	pages [][]byte
	err   error
}

func (r *fakeRasterizer) Rasterize(ctx context.Context, pdf []byte, dpi int) ([]raster.Page, error) {
	if r.err != nil {
		return nil, r.err
	}

	var pages []raster.Page

	for i, p := range r.pages {
		pages = append(pages, raster.Page{Index: i, Content: p, ContentType: "image/png"})
	}

	return pages, nil
}

type fakeCompleter struct {
	mu sync.Mutex

	answers map[string]string
	err     error

	prompts []string
	options []provider.CompleteOptions
}

func (c *fakeCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	m := messages[0]

	c.prompts = append(c.prompts, m.Content.String())
	c.options = append(c.options, *options)

	return &provider.Completion{
		Message: &provider.Message{
			Role:    provider.MessageRoleAssistant,
			Content: provider.MessageContent{provider.TextContent(c.answers[m.Content[0].File.Name])},
		},

		Usage: &provider.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil
}

func TestConvertPDF(t *testing.T) {
	completer := &fakeCompleter{
		answers: map[string]string{
			"page-1": "<|ref|>title<|/ref|><|det|>[[0,0,999,100]]<|/det|>\n# Report\n\n<|ref|>image<|/ref|><|det|>[[0,0,499,499]]<|/det|>\n\nFirst page.",
			"page-2": "Second page with figure[[500, 500, 999, 999]] and text[[0,0,10,10]] words.",
		},
	}

	rasterizer := &fakeRasterizer{
		pages: [][]byte{pagePNG(t, 200, 200), pagePNG(t, 100, 100)},
	}

	c, err := converter.New(
		converter.WithCompleter("deepseek-ocr", completer),
		converter.WithRasterizer(rasterizer),
		converter.WithConcurrency(2),
	)

	require.NoError(t, err)

	result, err := c.Convert(context.Background(), converter.File{Name: "scan.pdf", Content: []byte("%PDF-1.7")})
	require.NoError(t, err)

	require.Equal(t, 2, result.Pages)
	require.Equal(t, "deepseek-ocr", result.Model)
	require.Equal(t, provider.Usage{InputTokens: 20, OutputTokens: 10, TotalTokens: 30}, result.Usage)

	require.Equal(t, "# Report\n\n![image](page1_img0)\n\nFirst page."+
		"\n\n--- Page Break ---\n\n"+
		"Second page with ![figure](page2_img0) and words.", result.Markdown)

	require.Len(t, result.Images, 2)
	require.Contains(t, result.Images, "page1_img0")
	require.Contains(t, result.Images, "page2_img0")

	img, err := png.Decode(bytes.NewReader(result.Images["page1_img0"]))
	require.NoError(t, err)
	require.Equal(t, 99, img.Bounds().Dx())

	require.True(t, bytes.HasPrefix(result.PDF, []byte("%PDF-")))

	require.Equal(t, []string{converter.DefaultDocumentPrompt, converter.DefaultDocumentPrompt}, completer.prompts)
	require.Equal(t, 4096, *completer.options[0].MaxTokens)
	require.Zero(t, *completer.options[0].Temperature)
}

func TestConvertImage(t *testing.T) {
	completer := &fakeCompleter{
		answers: map[string]string{
			"page-1": "A receipt\n\n\n\nTotal: 12 & change",
		},
	}

	c, err := converter.New(converter.WithCompleter("deepseek-ocr", completer))
	require.NoError(t, err)

	result, err := c.Convert(context.Background(), converter.File{Name: "receipt.png", Content: pagePNG(t, 10, 10)})
	require.NoError(t, err)

	require.Equal(t, 1, result.Pages)
	require.Equal(t, "A receipt\n\nTotal: 12 & change", result.Markdown)
	require.Empty(t, result.Images)

	require.Equal(t, []string{converter.DefaultImagePrompt}, completer.prompts)
}

func TestConvertKeepsPageOrder(t *testing.T) {
	answers := map[string]string{}
	var pages [][]byte

	for i := 1; i <= 6; i++ {
		answers[fmt.Sprintf("page-%d", i)] = fmt.Sprintf("page %d", i)
		pages = append(pages, pagePNG(t, 4, 4))
	}

	c, err := converter.New(
		converter.WithCompleter("m", &fakeCompleter{answers: answers}),
		converter.WithRasterizer(&fakeRasterizer{pages: pages}),
		converter.WithConcurrency(4),
		converter.WithRateLimit(1000),
	)

	require.NoError(t, err)

	result, err := c.Convert(context.Background(), converter.File{Name: "doc.pdf"})
	require.NoError(t, err)

	parts := strings.Split(result.Markdown, "\n\n--- Page Break ---\n\n")
	require.Equal(t, []string{"page 1", "page 2", "page 3", "page 4", "page 5", "page 6"}, parts)
}

func TestConvertErrors(t *testing.T) {
	failure := errors.New("upstream unavailable")

	c, err := converter.New(converter.WithCompleter("m", &fakeCompleter{err: failure}))
	require.NoError(t, err)

	_, err = c.Convert(context.Background(), converter.File{Name: "a.png", Content: pagePNG(t, 2, 2)})
	require.ErrorIs(t, err, failure)

	_, err = c.Convert(context.Background(), converter.File{Name: "notes.txt", Content: []byte("plain words")})
	require.ErrorIs(t, err, converter.ErrUnsupportedType)

	c, err = converter.New(converter.WithCompleter("m", &fakeCompleter{answers: map[string]string{"page-1": "  \n "}}))
	require.NoError(t, err)

	_, err = c.Convert(context.Background(), converter.File{Name: "a.png", Content: pagePNG(t, 2, 2)})
	require.ErrorIs(t, err, converter.ErrNoText)

	c, err = converter.New(
		converter.WithCompleter("m", &fakeCompleter{}),
		converter.WithRasterizer(&fakeRasterizer{err: raster.ErrUnavailable}),
	)

	require.NoError(t, err)

	_, err = c.Convert(context.Background(), converter.File{Name: "a.pdf"})
	require.ErrorIs(t, err, raster.ErrUnavailable)

	_, err = converter.New()
	require.ErrorIs(t, err, converter.ErrNoProvider)
}

type fakeExtractor struct {
	mu sync.Mutex

	pdf   bool
	files []string
}

func (e *fakeExtractor) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	e.mu.Lock()
	e.files = append(e.files, file.Name)
	e.mu.Unlock()

	if file.ContentType == "application/pdf" && !e.pdf {
		return nil, extractor.ErrUnsupported
	}

	return &extractor.Document{
		Pages: []extractor.Page{
			{
				Text: "text of " + file.Name + " ![img-0.png](img-0.png)",

				Images: []extractor.Image{
					{ID: "img-0.png", Content: pagePNGBytes, ContentType: "image/png"},
				},
			},
		},

		Usage: &provider.Usage{Pages: 1},
	}, nil
}

var pagePNGBytes = func() []byte {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)))

	return buf.Bytes()
}()

func TestConvertWithExtractor(t *testing.T) {
	e := &fakeExtractor{pdf: true}

	c, err := converter.New(
		converter.WithExtractor("mistral-ocr-2505", e),
		converter.WithDocumentOptions(document.WithFooter("")),
	)

	require.NoError(t, err)

	result, err := c.Convert(context.Background(), converter.File{Name: "scan.pdf"})
	require.NoError(t, err)

	require.Equal(t, "text of scan.pdf ![img-0.png](img-0.png)", result.Markdown)
	require.Equal(t, document.Images{"img-0.png": pagePNGBytes}, result.Images)
	require.Equal(t, 1, result.Usage.Pages)
	require.Equal(t, []string{"scan.pdf"}, e.files)
}

func TestConvertWithExtractorFallsBackToPages(t *testing.T) {
	e := &fakeExtractor{}

	c, err := converter.New(
		converter.WithExtractor("tesseract", e),
		converter.WithRasterizer(&fakeRasterizer{pages: [][]byte{pagePNG(t, 4, 4), pagePNG(t, 4, 4)}}),
	)

	require.NoError(t, err)

	result, err := c.Convert(context.Background(), converter.File{Name: "scan.pdf"})
	require.NoError(t, err)

	require.Equal(t, 2, result.Pages)
	require.Equal(t, "text of page-1 ![img-0.png](img-0.png)\n\n--- Page Break ---\n\ntext of page-2 ![img-0.png](img-0.png)", result.Markdown)
	require.Len(t, result.Images, 1)
	require.Equal(t, []string{"scan.pdf", "page-1", "page-2"}, e.files)
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name    string
		content []byte

		expected string
	}{
		{"a.JPG", nil, "image/jpeg"},
		{"a.jpeg", nil, "image/jpeg"},
		{"a.png", nil, "image/png"},
		{"a.gif", nil, "image/gif"},
		{"a.webp", nil, "image/webp"},
		{"a.pdf", nil, "application/pdf"},
		{"upload", []byte("%PDF-1.7\n"), "application/pdf"},
		{"upload", pagePNGBytes, "image/png"},
	}

	for _, tt := range tests {
		contentType, err := converter.DetectType(tt.name, tt.content)

		require.NoError(t, err, tt.name)
		require.Equal(t, tt.expected, contentType, tt.name)
	}

	_, err := converter.DetectType("a.docx", []byte("PK\x03\x04"))
	require.ErrorIs(t, err, converter.ErrUnsupportedType)
}

func TestOutputName(t *testing.T) {
	require.Equal(t, "scan_ocr.pdf", converter.OutputName("scan.pdf"))
	require.Equal(t, "photo_ocr.pdf", converter.OutputName("/tmp/in/photo.JPG"))
	require.Equal(t, "archive.tar_ocr.pdf", converter.OutputName("archive.tar.gz"))
	require.Equal(t, "document_ocr.pdf", converter.OutputName(""))
}

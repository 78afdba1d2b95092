package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ledongthuc/pdf"
)

const DefaultDPI = 144

var (
	ErrUnavailable = errors.New("rasterizer unavailable")
	ErrNoPages     = errors.New("document has no pages")
)

// Page is one rendered page. Index is zero-based.
type Page struct {
	Index int

	Content     []byte
	ContentType string
}

type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, dpi int) ([]Page, error)
}

// Decode reads a page raster in any registered format (jpeg, png, gif, webp,
// bmp, tiff).
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))

	if err != nil {
		return nil, fmt.Errorf("decode raster: %w", err)
	}

	return img, nil
}

// PageCount reads the page tree of a PDF.
func PageCount(data []byte) (count int, err error) {
	defer func() {
		// the reader panics on some malformed cross-reference tables
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))

	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}

	count = r.NumPage()

	if count == 0 {
		return 0, ErrNoPages
	}

	return count, nil
}

// New returns the named rasterizer. An empty name picks pdftoppm when it is
// installed and MuPDF otherwise.
func New(name string) (Rasterizer, error) {
	switch name {
	case "poppler", "pdftoppm":
		return NewPoppler(), nil

	case "fitz", "mupdf":
		return NewFitz(), nil

	case "":
		if p := NewPoppler(); p.Available() {
			return p, nil
		}

		if f := NewFitz(); f.Available() {
			return f, nil
		}

		return NewPoppler(), nil
	}

	return nil, fmt.Errorf("unsupported rasterizer %q", name)
}

//go:build fitz

package raster

import (
	"bytes"
	"context"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

var _ Rasterizer = (*Fitz)(nil)

// Fitz renders pages in process with MuPDF.
type Fitz struct{}

func NewFitz() *Fitz {
	return &Fitz{}
}

func (f *Fitz) Available() bool {
	return true
}

func (f *Fitz) Rasterize(ctx context.Context, data []byte, dpi int) ([]Page, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	doc, err := fitz.NewFromMemory(data)

	if err != nil {
		return nil, err
	}

	defer doc.Close()

	count := doc.NumPage()

	if count == 0 {
		return nil, ErrNoPages
	}

	pages := make([]Page, 0, count)

	for i := range count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(i, float64(dpi))

		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer

		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}

		pages = append(pages, Page{
			Index: i,

			Content:     buf.Bytes(),
			ContentType: "image/png",
		})
	}

	return pages, nil
}

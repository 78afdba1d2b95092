package raster_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/adrianliechti/scanpress/pkg/raster"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
)

func testPDF(t *testing.T, pages int) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)

	for i := range pages {
		doc.AddPage()
		doc.Cell(100, 20, "page "+string(rune('A'+i)))
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	result, err := raster.Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 3, 2), result.Bounds())

	_, err = raster.Decode([]byte("garbage"))
	require.Error(t, err)
}

func TestPageCount(t *testing.T) {
	count, err := raster.PageCount(testPDF(t, 3))
	require.NoError(t, err)
	require.Equal(t, 3, count)

	_, err = raster.PageCount([]byte("not a pdf"))
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	r, err := raster.New("poppler")
	require.NoError(t, err)
	require.IsType(t, &raster.Poppler{}, r)

	_, err = raster.New("ghostscript")
	require.Error(t, err)
}

func TestPopplerRasterize(t *testing.T) {
	p := raster.NewPoppler(raster.WithWorkers(2))

	if !p.Available() {
		t.Skip("pdftoppm not installed")
	}

	pages, err := p.Rasterize(context.Background(), testPDF(t, 2), 36)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	for i, page := range pages {
		require.Equal(t, i, page.Index)
		require.Equal(t, "image/png", page.ContentType)

		img, err := raster.Decode(page.Content)
		require.NoError(t, err)

		// letter is 8.5in x 11in
		require.InDelta(t, 306, img.Bounds().Dx(), 2)
		require.InDelta(t, 396, img.Bounds().Dy(), 2)
	}
}

func TestFitzUnavailable(t *testing.T) {
	f := raster.NewFitz()

	if f.Available() {
		t.Skip("built with fitz")
	}

	_, err := f.Rasterize(context.Background(), nil, 0)
	require.ErrorIs(t, err, raster.ErrUnavailable)
}

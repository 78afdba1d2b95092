// Package figure crops grounded figures out of a page raster.
package figure

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"log/slog"

	"github.com/adrianliechti/scanpress/pkg/grounding"

	"golang.org/x/image/draw"
)

var (
	ErrEmptyRegion = errors.New("region does not intersect the page")
)

type Image struct {
	ID   string
	Page int

	Content     []byte
	ContentType string
}

type Extractor struct {
	logger  *slog.Logger
	encoder *png.Encoder
}

type Option func(*Extractor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func WithCompression(level png.CompressionLevel) Option {
	return func(e *Extractor) {
		e.encoder.CompressionLevel = level
	}
}

func New(options ...Option) *Extractor {
	e := &Extractor{
		encoder: &png.Encoder{
			CompressionLevel: png.DefaultCompression,
		},
	}

	for _, option := range options {
		option(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Extract crops every image-like region of refs out of raster and encodes it as
// PNG. Successful regions get their ID set in place, numbered per page in
// reference order; failed regions are logged and keep an empty ID.
func (e *Extractor) Extract(raster image.Image, refs []grounding.Reference, page int) []Image {
	var result []Image

	bounds := raster.Bounds()

	for i := range refs {
		ref := &refs[i]

		if !ref.IsImage() {
			continue
		}

		for j := range ref.Regions {
			region := &ref.Regions[j]

			box := grounding.ToPixelBox(region.Box, ref.Space, bounds.Dx(), bounds.Dy())

			data, err := e.crop(raster, box)

			if err != nil {
				e.logger.Warn("could not extract image",
					"page", page,
					"label", ref.Label,
					"box", box,
					"error", err,
				)

				continue
			}

			region.ID = grounding.ImageID(page, len(result))

			result = append(result, Image{
				ID:   region.ID,
				Page: page,

				Content:     data,
				ContentType: "image/png",
			})
		}
	}

	return result
}

func (e *Extractor) crop(raster image.Image, box grounding.PixelBox) ([]byte, error) {
	if box[2] <= box[0] || box[3] <= box[1] {
		return nil, ErrEmptyRegion
	}

	bounds := raster.Bounds()

	// boxes are relative to the raster origin
	rect := box.Rect().Add(bounds.Min).Intersect(bounds)

	if rect.Empty() {
		return nil, ErrEmptyRegion
	}

	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, image.Point{}, raster, rect, draw.Src, nil)

	var buf bytes.Buffer

	if err := e.encoder.Encode(&buf, dst); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

package document

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

var ErrEmptyImage = errors.New("image has no pixels")

// Scale returns the display size of a width x height pixel image fitted into
// a maxWidth x maxHeight box. Images are never enlarged.
func Scale(width, height int, maxWidth, maxHeight float64) (float64, float64) {
	w := float64(width)
	h := float64(height)

	scale := math.Min(math.Min(maxWidth/w, maxHeight/h), 1)

	return w * scale, h * scale
}

// prepareImage decodes any supported format and re-encodes it as an 8-bit
// PNG together with its display size.
func (a *Assembler) prepareImage(data []byte) ([]byte, float64, float64, error) {
	src, _, err := image.Decode(bytes.NewReader(data))

	if err != nil {
		return nil, 0, 0, err
	}

	bounds := src.Bounds()

	if bounds.Empty() {
		return nil, 0, 0, ErrEmptyImage
	}

	width, height := Scale(bounds.Dx(), bounds.Dy(), a.maxWidth, a.maxHeight)

	target := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	if a.dpi > 0 {
		// display size is in points, 72 per inch
		w := int(math.Round(width / 72 * a.dpi))
		h := int(math.Round(height / 72 * a.dpi))

		if w < bounds.Dx() && h < bounds.Dy() {
			target = image.Rect(0, 0, max(w, 1), max(h, 1))
		}
	}

	dst := image.NewNRGBA(target)

	if target.Dx() == bounds.Dx() && target.Dy() == bounds.Dy() {
		draw.Copy(dst, image.Point{}, src, bounds, draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(dst, target, src, bounds, draw.Src, nil)
	}

	var buf bytes.Buffer

	if err := png.Encode(&buf, dst); err != nil {
		return nil, 0, 0, err
	}

	return buf.Bytes(), width, height, nil
}

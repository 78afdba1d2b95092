package grounding

import (
	"image"
)

const normalizedMax = 999.0

// PixelBox is [x1, y1, x2, y2] in raster pixels.
type PixelBox [4]int

func (b PixelBox) Rect() image.Rectangle {
	return image.Rect(b[0], b[1], b[2], b[3])
}

// ToPixelBox maps box onto a width x height raster. Normalized coordinates are
// scaled by c/999*dimension and truncated; pixel coordinates pass through.
// Results are not clamped.
func ToPixelBox(box Box, space Space, width, height int) PixelBox {
	if space == SpacePixel {
		return PixelBox{int(box[0]), int(box[1]), int(box[2]), int(box[3])}
	}

	w := float64(width)
	h := float64(height)

	return PixelBox{
		int(box[0] / normalizedMax * w),
		int(box[1] / normalizedMax * h),
		int(box[2] / normalizedMax * w),
		int(box[3] / normalizedMax * h),
	}
}

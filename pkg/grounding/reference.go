package grounding

import (
	"fmt"
	"strings"
)

// Space declares the coordinate system a box was emitted in.
type Space int

const (
	// SpaceNormalized is the 0-999 scale independent grid used by DeepSeek-OCR.
	SpaceNormalized Space = iota

	// SpacePixel holds absolute pixel coordinates of the source raster.
	SpacePixel
)

func (s Space) String() string {
	switch s {
	case SpacePixel:
		return "pixel"
	default:
		return "normalized"
	}
}

type Encoding int

const (
	EncodingTagged Encoding = iota
	EncodingInline
)

func (e Encoding) String() string {
	switch e {
	case EncodingInline:
		return "inline"
	default:
		return "tagged"
	}
}

// Box is [x1, y1, x2, y2] in the reference's Space.
type Box [4]float64

type Region struct {
	Box Box

	// ID is empty until the region was extracted into an image.
	ID string
}

// Reference is one grounding annotation found in a page's OCR text.
type Reference struct {
	Label string

	Space    Space
	Encoding Encoding

	Regions []Region

	// Start and End are byte offsets of the whole annotation in the page text.
	Start int
	End   int
}

func (r Reference) IsImage() bool {
	return IsImageLabel(r.Label)
}

func (r Reference) IsStructural() bool {
	return IsStructuralLabel(r.Label)
}

var imageLabels = []string{
	"image",
	"figure",
	"fig",
	"picture",
	"photo",
	"diagram",
	"chart",
	"graph",
	"illustration",
}

var structuralLabels = []string{
	"text",
	"title",
	"subtitle",
	"sub_title",
	"header",
	"footer",
	"caption",
	"paragraph",
	"table",
}

// IsImageLabel reports whether label names a region that should be cropped out
// as a figure.
func IsImageLabel(label string) bool {
	return hasLabel(imageLabels, label)
}

// IsStructuralLabel reports whether label names a layout region whose
// annotation is dropped while its content is kept.
func IsStructuralLabel(label string) bool {
	return hasLabel(structuralLabels, label)
}

func hasLabel(labels []string, label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))

	for _, l := range labels {
		if l == label {
			return true
		}
	}

	return false
}

// ImageID returns the identifier of the n-th image extracted from a page.
func ImageID(page, n int) string {
	return fmt.Sprintf("page%d_img%d", page, n)
}

// Assign numbers every image-like region positionally, as if each crop
// succeeded. It is used when no raster is available to extract from.
func Assign(page int, refs []Reference) int {
	n := 0

	for i := range refs {
		if !refs[i].IsImage() {
			continue
		}

		for j := range refs[i].Regions {
			refs[i].Regions[j].ID = ImageID(page, n)
			n++
		}
	}

	return n
}

//go:build !fitz

package raster

import (
	"context"
	"fmt"
)

var _ Rasterizer = (*Fitz)(nil)

// Fitz is only functional in builds with the fitz tag.
type Fitz struct{}

func NewFitz() *Fitz {
	return &Fitz{}
}

func (f *Fitz) Available() bool {
	return false
}

func (f *Fitz) Rasterize(ctx context.Context, data []byte, dpi int) ([]Page, error) {
	return nil, fmt.Errorf("%w: built without fitz support", ErrUnavailable)
}

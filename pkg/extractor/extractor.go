package extractor

import (
	"context"
	"errors"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/provider"
)

// Provider is a document OCR service that returns page markdown together
// with the images it references.
type Provider interface {
	Extract(ctx context.Context, file File, options *ExtractOptions) (*Document, error)
}

var (
	ErrUnsupported = errors.New("unsupported type")
)

type File = provider.File

type ExtractOptions struct {
	// Images asks for embedded images to be returned.
	Images bool
}

type Document struct {
	Model string

	Pages []Page

	Usage *provider.Usage
}

type Page struct {
	Index int

	Text string

	Images []Image
}

type Image struct {
	ID string

	Content     []byte
	ContentType string
}

// Text joins the non-empty page texts with blank lines.
func (d *Document) Text() string {
	var parts []string

	for _, p := range d.Pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}

		parts = append(parts, p.Text)
	}

	return strings.Join(parts, "\n\n")
}

// Images collects the images of all pages by identifier.
func (d *Document) Images() map[string][]byte {
	result := make(map[string][]byte)

	for _, p := range d.Pages {
		for _, img := range p.Images {
			if img.ID == "" || len(img.Content) == 0 {
				continue
			}

			result[img.ID] = img.Content
		}
	}

	return result
}

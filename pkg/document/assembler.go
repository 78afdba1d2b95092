package document

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"

	"github.com/go-pdf/fpdf"
)

type PageSize string

const (
	PageLetter PageSize = "Letter"
	PageA4     PageSize = "A4"
)

const (
	DefaultFooter = "Generated from OCR extraction using %s"

	defaultMargin   = 54.0  // 0.75in
	defaultImageBox = 432.0 // 6in
)

type Assembler struct {
	logger *slog.Logger

	size   PageSize
	margin float64

	font   string
	footer string
	model  string

	maxWidth  float64
	maxHeight float64

	dpi float64
}

type Option func(*Assembler)

func New(options ...Option) *Assembler {
	a := &Assembler{
		logger: slog.Default(),

		size:   PageLetter,
		margin: defaultMargin,

		footer: DefaultFooter,

		maxWidth:  defaultImageBox,
		maxHeight: defaultImageBox,
	}

	for _, option := range options {
		option(a)
	}

	return a
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

func WithPageSize(size PageSize) Option {
	return func(a *Assembler) {
		a.size = size
	}
}

func WithMargin(margin float64) Option {
	return func(a *Assembler) {
		a.margin = margin
	}
}

// WithFont sets a TrueType font file used for all text. Without one the core
// Helvetica font is used and text is limited to cp1252.
func WithFont(path string) Option {
	return func(a *Assembler) {
		a.font = path
	}
}

// WithFooter sets the footer template; %s is replaced by the model name. An
// empty template disables the footer.
func WithFooter(footer string) Option {
	return func(a *Assembler) {
		a.footer = footer
	}
}

func WithModel(model string) Option {
	return func(a *Assembler) {
		a.model = model
	}
}

func WithMaxImageSize(width, height float64) Option {
	return func(a *Assembler) {
		a.maxWidth = width
		a.maxHeight = height
	}
}

// WithImageResolution downsamples scaled images to the given density in
// pixels per inch. Zero keeps the source pixels.
func WithImageResolution(dpi float64) Option {
	return func(a *Assembler) {
		a.dpi = dpi
	}
}

// ParsePageSize accepts "letter" or "a4" in any case.
func ParsePageSize(s string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "letter":
		return PageLetter, nil
	case "a4":
		return PageA4, nil
	}

	return "", fmt.Errorf("unsupported page size %q", s)
}

// Assemble turns normalized markdown and its images into a PDF.
func (a *Assembler) Assemble(markdown string, images Images) ([]byte, error) {
	units := a.Flow(markdown, images)

	var buf bytes.Buffer

	if err := a.Render(units, &buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Flow resolves image markers against images and builds the ordered body.
func (a *Assembler) Flow(markdown string, images Images) []Unit {
	var units []Unit

	for _, part := range Split(markdown) {
		if id, ok := MarkerTarget(part); ok {
			data, found := images[id]

			if !found {
				continue
			}

			unit, err := a.imageUnit(id, data)

			if err != nil {
				a.logger.Warn("could not add image", "id", id, "error", err)
				continue
			}

			units = append(units, unit)
			continue
		}

		text := strings.TrimSpace(part)

		if text == "" {
			continue
		}

		units = append(units, TextUnit(Escape(text)))
	}

	if a.footer != "" {
		footer := a.footer

		if strings.Contains(footer, "%s") {
			footer = fmt.Sprintf(footer, a.model)
		}

		units = append(units, Unit{
			Kind:  UnitText,
			Text:  Escape(footer),
			Style: StyleFooter,
		})
	}

	return units
}

func (a *Assembler) imageUnit(id string, data []byte) (Unit, error) {
	content, width, height, err := a.prepareImage(data)

	if err != nil {
		return Unit{}, err
	}

	return Unit{
		Kind: UnitImage,

		Image: &ImageUnit{
			ID:      id,
			Content: content,

			Width:  width,
			Height: height,
		},
	}, nil
}

// Render writes the units as a paginated PDF.
func (a *Assembler) Render(units []Unit, w io.Writer) error {
	pdf := fpdf.New("P", "pt", string(a.size), "")

	pdf.SetCreator("scanpress", true)
	pdf.SetMargins(a.margin, a.margin, a.margin)
	pdf.SetAutoPageBreak(true, a.margin)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	if a.font != "" {
		family = "body"
		translate = func(s string) string { return s }

		pdf.AddUTF8Font(family, "", a.font)
	}

	pdf.AddPage()

	for _, u := range units {
		switch u.Kind {
		case UnitText:
			text := translate(plain(u.Text))

			if u.Style == StyleFooter {
				pdf.Ln(24)

				pdf.SetFont(family, "", 8)
				pdf.SetTextColor(128, 128, 128)
				pdf.MultiCell(0, 10, text, "", "C", false)

				continue
			}

			pdf.SetFont(family, "", 10)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 14, text, "", "L", false)
			pdf.Ln(6)

		case UnitImage:
			if u.Image == nil {
				continue
			}

			a.renderImage(pdf, u.Image)
		}

		if err := pdf.Error(); err != nil {
			return err
		}
	}

	return pdf.Output(w)
}

func (a *Assembler) renderImage(pdf *fpdf.Fpdf, img *ImageUnit) {
	options := fpdf.ImageOptions{
		ImageType: "PNG",
	}

	pdf.RegisterImageOptionsReader(img.ID, options, bytes.NewReader(img.Content))

	if err := pdf.Error(); err != nil {
		a.logger.Warn("could not embed image", "id", img.ID, "error", err)

		pdf.ClearError()
		return
	}

	pdf.Ln(6)

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	if pdf.GetY()+img.Height > pageHeight-bottom {
		pdf.AddPage()
	}

	left, _, _, _ := pdf.GetMargins()
	y := pdf.GetY()

	pdf.ImageOptions(img.ID, left, y, img.Width, img.Height, false, options, 0, "")

	pdf.SetY(y + img.Height)
	pdf.Ln(6)
}

func plain(markup string) string {
	return html.UnescapeString(strings.ReplaceAll(markup, "<br/>", "\n"))
}

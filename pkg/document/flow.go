package document

import (
	"regexp"
	"strings"
)

var (
	markerPattern = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	markerTarget  = regexp.MustCompile(`^!\[.*?\]\((.+?)\)$`)

	markupEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// Images maps image identifiers to encoded image bytes.
type Images map[string][]byte

type UnitKind int

const (
	UnitText UnitKind = iota
	UnitImage
)

type Style int

const (
	StyleBody Style = iota
	StyleFooter
)

// Unit is one element of the document body, either a run of text markup or a
// resolved image.
type Unit struct {
	Kind UnitKind

	// Text is escaped markup; line breaks are written as <br/>.
	Text  string
	Style Style

	Image *ImageUnit
}

type ImageUnit struct {
	ID string

	// Content is an 8-bit PNG.
	Content []byte

	// Width and Height are the display size in points.
	Width  float64
	Height float64
}

func TextUnit(text string) Unit {
	return Unit{
		Kind: UnitText,
		Text: text,
	}
}

// Split cuts markdown around inline image markers, keeping the markers as
// separate elements.
func Split(markdown string) []string {
	var parts []string

	cursor := 0

	for _, loc := range markerPattern.FindAllStringIndex(markdown, -1) {
		parts = append(parts, markdown[cursor:loc[0]])
		parts = append(parts, markdown[loc[0]:loc[1]])

		cursor = loc[1]
	}

	parts = append(parts, markdown[cursor:])

	return parts
}

// MarkerTarget returns the identifier an image marker points to.
func MarkerTarget(part string) (string, bool) {
	m := markerTarget.FindStringSubmatch(part)

	if m == nil {
		return "", false
	}

	return m[1], true
}

// Escape turns plain text into paragraph markup.
func Escape(text string) string {
	text = markupEscaper.Replace(text)
	return strings.ReplaceAll(text, "\n", "<br/>")
}

package grounding

import (
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

var (
	// <|ref|>label<|/ref|><|det|>[[x1,y1,x2,y2], ...]<|/det|>
	TaggedPattern = regexp.MustCompile(`(?s)<\|ref\|>(.*?)<\|/ref\|>\s*<\|det\|>(.*?)<\|/det\|>`)

	// label[[x1, y1, x2, y2]]
	InlinePattern = regexp.MustCompile(`(?i)\b(` + alternation(imageLabels, structuralLabels) + `)\s*\[\[\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\]\]`)
)

func alternation(sets ...[]string) string {
	var words []string

	for _, set := range sets {
		words = append(words, set...)
	}

	// longest first so that "figure" wins over "fig"
	sort.SliceStable(words, func(i, j int) bool {
		return len(words[i]) > len(words[j])
	})

	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	return strings.Join(words, "|")
}

type Parser struct {
	space  Space
	logger *slog.Logger
}

type Option func(*Parser)

// WithSpace declares the coordinate space the OCR model emits.
func WithSpace(space Space) Option {
	return func(p *Parser) {
		p.space = space
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

func NewParser(options ...Option) *Parser {
	p := &Parser{
		space: SpaceNormalized,
	}

	for _, option := range options {
		option(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Parse returns the grounding references of one page in document order.
func Parse(text string) []Reference {
	return NewParser().Parse(text)
}

// Parse scans text for tagged-block and inline-bracket annotations. Tagged
// blocks with malformed coordinates are logged and skipped.
func (p *Parser) Parse(text string) []Reference {
	tagged := p.parseTagged(text)
	inline := p.parseInline(text, tagged)

	refs := append(tagged, inline...)

	slices.SortStableFunc(refs, func(a, b Reference) int {
		return a.Start - b.Start
	})

	return refs
}

func (p *Parser) parseTagged(text string) []Reference {
	var refs []Reference

	for _, loc := range TaggedPattern.FindAllStringSubmatchIndex(text, -1) {
		label := strings.TrimSpace(text[loc[2]:loc[3]])
		coords := text[loc[4]:loc[5]]

		boxes, err := ParseCoordinates(coords)

		if err != nil {
			p.logger.Warn("skipping grounding reference with malformed coordinates",
				"label", label,
				"coordinates", truncate(coords, 50),
				"error", err,
			)

			continue
		}

		refs = append(refs, Reference{
			Label: label,

			Space:    p.space,
			Encoding: EncodingTagged,

			Regions: toRegions(boxes),

			Start: loc[0],
			End:   loc[1],
		})
	}

	return refs
}

func (p *Parser) parseInline(text string, tagged []Reference) []Reference {
	var refs []Reference

	for _, loc := range InlinePattern.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(tagged, loc[0], loc[1]) {
			continue
		}

		var box Box

		for i := range 4 {
			val, err := strconv.ParseFloat(text[loc[4+2*i]:loc[5+2*i]], 64)

			if err != nil {
				break
			}

			box[i] = val
		}

		refs = append(refs, Reference{
			Label: strings.ToLower(text[loc[2]:loc[3]]),

			Space:    p.space,
			Encoding: EncodingInline,

			Regions: []Region{{Box: box}},

			Start: loc[0],
			End:   loc[1],
		})
	}

	return refs
}

func overlaps(refs []Reference, start, end int) bool {
	for _, r := range refs {
		if start < r.End && r.Start < end {
			return true
		}
	}

	return false
}

func toRegions(boxes []Box) []Region {
	regions := make([]Region, len(boxes))

	for i, b := range boxes {
		regions[i] = Region{Box: b}
	}

	return regions
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}

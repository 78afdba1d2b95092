package markdown

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/grounding"
)

const PageBreak = "\n\n--- Page Break ---\n\n"

var (
	blankLines = regexp.MustCompile(`\n{3,}`)

	promptEcho = "<|grounding|>"
)

type span struct {
	start int
	end   int

	text string
}

// Normalize rewrites the grounding annotations of a page into standard
// markdown. refs must come from grounding.Parse on the same text; image-like
// regions with an ID become inline images, everything else annotated is
// removed while surrounding prose is kept.
func Normalize(text string, refs []grounding.Reference) string {
	byStart := make(map[int]grounding.Reference, len(refs))

	for _, r := range refs {
		byStart[r.Start] = r
	}

	var spans []span

	tagged := grounding.TaggedPattern.FindAllStringIndex(text, -1)

	for _, loc := range tagged {
		spans = append(spans, span{
			start: loc[0],
			end:   loc[1],

			text: images(byStart, loc[0]),
		})
	}

	for _, loc := range grounding.InlinePattern.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(tagged, loc[0], loc[1]) {
			continue
		}

		label := text[loc[2]:loc[3]]

		if grounding.IsImageLabel(label) {
			spans = append(spans, span{
				start: loc[0],
				end:   loc[1],

				text: images(byStart, loc[0]),
			})

			continue
		}

		// structural labels lose their trailing whitespace too
		end := loc[1]

		for end < len(text) && isSpace(text[end]) {
			end++
		}

		spans = append(spans, span{
			start: loc[0],
			end:   end,
		})
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	var sb strings.Builder
	cursor := 0

	for _, s := range spans {
		if s.start < cursor {
			continue
		}

		sb.WriteString(text[cursor:s.start])
		sb.WriteString(s.text)

		cursor = s.end
	}

	sb.WriteString(text[cursor:])

	return Clean(sb.String())
}

// NormalizePage parses and normalizes one page without a raster, numbering
// every image-like region as if it had been extracted.
func NormalizePage(text string, page int) string {
	refs := grounding.Parse(text)
	grounding.Assign(page, refs)

	return Normalize(text, refs)
}

// Clean drops prompt echoes, collapses runs of blank lines and trims.
func Clean(text string) string {
	text = strings.ReplaceAll(text, promptEcho, "")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Join concatenates normalized pages with a visible page break.
func Join(pages []string) string {
	return strings.Join(pages, PageBreak)
}

func images(refs map[int]grounding.Reference, start int) string {
	ref, ok := refs[start]

	if !ok || !ref.IsImage() {
		return ""
	}

	var markers []string

	for _, r := range ref.Regions {
		if r.ID == "" {
			continue
		}

		markers = append(markers, fmt.Sprintf("![%s](%s)", ref.Label, r.ID))
	}

	return strings.Join(markers, "\n")
}

func insideAny(locs [][]int, start, end int) bool {
	for _, l := range locs {
		if start < l[1] && l[0] < end {
			return true
		}
	}

	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Preview renders markdown as plain text without images, cut to limit runes.
// A non-positive limit returns the whole text.
func Preview(source string, limit int) string {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var sb strings.Builder

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.Image:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if entering {
				sb.Write(n.Segment.Value(src))

				if n.SoftLineBreak() || n.HardLineBreak() {
					sb.WriteByte('\n')
				}
			}

		case *ast.String:
			if entering {
				sb.Write(n.Value)
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()

				for i := 0; i < lines.Len(); i++ {
					line := lines.At(i)
					sb.Write(line.Value(src))
				}

				sb.WriteString("\n")
			}

			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.ThematicBreak:
			if entering {
				sb.WriteString("---\n\n")
			}

		default:
			if !entering && n.Type() == ast.TypeBlock {
				sb.WriteString("\n\n")
			}
		}

		return ast.WalkContinue, nil
	})

	result := Clean(sb.String())

	if limit > 0 {
		runes := []rune(result)

		if len(runes) > limit {
			return string(runes[:limit]) + "..."
		}
	}

	return result
}

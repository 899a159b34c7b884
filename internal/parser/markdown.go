package parser

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// extractMarkdown flattens a Markdown document to text, keeping headings as
// "#"-prefixed lines and dropping inline markup.
func extractMarkdown(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	doc := markdown.Parser().Parse(text.NewReader(src))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		t := extractText(n, src)
		if t == "" {
			continue
		}
		if h, ok := n.(*ast.Heading); ok {
			t = strings.Repeat("#", h.Level) + " " + t
		}
		blocks = append(blocks, t)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// atxH1 matches a "# Title" line. Only the line itself counts: setext
// underlines and block-quote markers do not make a title.
var atxH1 = regexp.MustCompile(`(?m)^[ \t]*#[ \t]+(.+)$`)

// FirstHeading returns the text of the first level-1 ATX heading line in src,
// or "" when there is none. Closing "#" sequences are kept as written.
func FirstHeading(src string) string {
	for _, m := range atxH1.FindAllStringSubmatch(src, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t
		}
	}
	return ""
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		if _, ok := n.(*ast.Heading); ok {
			return strings.TrimSpace(buf.String())
		}
		// Paragraph-like blocks carry inline children; prefer them to raw lines.
		if fc := n.FirstChild(); fc != nil && fc.Type() == ast.TypeInline {
			buf.Reset()
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			s := extractText(c, src)
			if s != "" && c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}

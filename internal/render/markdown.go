package render

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

type Heading struct {
	Level int
	ID    string
	Text  string
}

type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &MarkdownRenderer{md: md}
}

type MarkdownResult struct {
	HTML     []byte
	Headings []Heading
}

// Render converts GFM markdown to HTML. Heading ids come from HeadingIDs so
// that links built from the raw markdown resolve.
func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext(parser.WithIDs(NewHeadingIDs()))
	reader := text.NewReader(src)
	doc := r.md.Parser().Parse(reader, parser.WithContext(ctx))

	var heads []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			var idStr string
			if id, ok := h.AttributeString("id"); ok {
				switch v := id.(type) {
				case string:
					idStr = v
				case []byte:
					idStr = string(v)
				}
			}
			var textBuf bytes.Buffer
			writeText(&textBuf, h, src)
			heads = append(heads, Heading{
				Level: h.Level,
				ID:    idStr,
				Text:  textBuf.String(),
			})
		}
		return ast.WalkContinue, nil
	})

	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML:     buf.Bytes(),
		Headings: heads,
	}, nil
}

// writeText collects the text of n and its inline descendants, dropping
// emphasis and code span markers.
func writeText(buf *bytes.Buffer, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if seg, ok := c.(*ast.Text); ok {
			buf.Write(seg.Segment.Value(src))
			if seg.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		writeText(buf, c, src)
	}
}

// HeadingIDs hands out unique, GitHub style heading anchors.
// It satisfies goldmark's parser.IDs.
type HeadingIDs struct {
	used map[string]struct{}
}

func NewHeadingIDs() *HeadingIDs {
	return &HeadingIDs{used: make(map[string]struct{})}
}

// Next returns the anchor for a heading text, suffixing -1, -2, ... on repeats.
func (h *HeadingIDs) Next(text string) string {
	base := HeadingSlug(text)
	id := base
	for i := 1; ; i++ {
		if _, ok := h.used[id]; !ok {
			break
		}
		id = base + "-" + strconv.Itoa(i)
	}
	h.used[id] = struct{}{}
	return id
}

func (h *HeadingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(h.Next(string(value)))
}

func (h *HeadingIDs) Put(value []byte) {
	h.used[string(value)] = struct{}{}
}

// HeadingSlug lower-cases text, keeps letters and digits and turns
// spaces and hyphens into '-'.
func HeadingSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "heading"
	}
	return b.String()
}

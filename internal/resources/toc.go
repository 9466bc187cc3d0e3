package resources

import (
	"html"
	"strings"

	"zazasite/internal/domain/content"
	"zazasite/internal/render"
)

// BuildTOC lists the level-two headings as an ordered list linking to the
// ids the markdown renderer assigned. It returns "" when there are none.
func BuildTOC(headings []render.Heading) string {
	var items []string
	for _, h := range headings {
		if h.Level != 2 || h.ID == "" {
			continue
		}
		items = append(items, `<li><a href="#`+html.EscapeString(h.ID)+`">`+html.EscapeString(strings.TrimSpace(h.Text))+`</a></li>`)
	}
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<nav class=\"toc\">\n<h2>Contents</h2>\n<ol>\n")
	for _, it := range items {
		b.WriteString(it)
		b.WriteByte('\n')
	}
	b.WriteString("</ol>\n</nav>\n")
	return b.String()
}

// InjectTOC places toc right after the first </h1>, or at the top when the
// document has no level-one heading.
func InjectTOC(doc, toc string) string {
	if toc == "" {
		return doc
	}
	const closeH1 = "</h1>"
	i := strings.Index(doc, closeH1)
	if i < 0 {
		return toc + doc
	}
	i += len(closeH1)
	return doc[:i] + "\n" + toc + doc[i:]
}

// BuildCover renders the cover page block, or "" when no cover title is set.
func BuildCover(res content.Resource) string {
	if strings.TrimSpace(res.CoverTitle) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<section class="cover">`)
	if res.CoverBadge != "" {
		b.WriteString(`<span class="cover-badge">` + html.EscapeString(res.CoverBadge) + `</span>`)
	}
	b.WriteString(`<div class="cover-title">` + html.EscapeString(res.CoverTitle) + `</div>`)
	if res.CoverSubtitle != "" {
		b.WriteString(`<p class="cover-subtitle">` + html.EscapeString(res.CoverSubtitle) + `</p>`)
	}
	b.WriteString("</section>\n\n")
	return b.String()
}

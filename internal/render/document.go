package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"time"
)

//go:embed resource.css
var defaultStylesheet string

// DocumentPage is a complete, self-contained resource document.
type DocumentPage struct {
	Title       string
	Lang        string
	Company     string
	Description string
	Body        template.HTML
	CSS         template.CSS
	Generated   time.Time
}

const documentTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
<style>
{{.CSS}}
</style>
</head>
<body>
<main class="resource">
{{.Body}}
</main>
<footer class="disclaimer">
<p>&copy; {{year .Generated}} {{.Company}}. This resource is provided for educational use. Review all content against your school's policies before sharing it with students or families.</p>
</footer>
</body>
</html>
`

type DocumentRenderer struct {
	tpl *template.Template
	css template.CSS
}

// NewDocumentRenderer uses the stylesheet at cssPath, or the built-in one when cssPath is empty.
func NewDocumentRenderer(cssPath string) (*DocumentRenderer, error) {
	css := defaultStylesheet
	if cssPath != "" {
		b, err := os.ReadFile(cssPath)
		if err != nil {
			return nil, fmt.Errorf("read stylesheet: %w", err)
		}
		css = string(b)
	}
	tpl, err := template.New("document").Funcs(template.FuncMap{
		"year": func(t time.Time) int {
			if t.IsZero() {
				return time.Now().Year()
			}
			return t.Year()
		},
	}).Parse(documentTemplate)
	if err != nil {
		return nil, err
	}
	return &DocumentRenderer{tpl: tpl, css: template.CSS(css)}, nil
}

func (r *DocumentRenderer) Render(page DocumentPage) ([]byte, error) {
	if page.CSS == "" {
		page.CSS = r.css
	}
	if page.Lang == "" {
		page.Lang = "en"
	}
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

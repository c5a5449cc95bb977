package publish

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		// Raw HTML in note bodies is dropped, not passed through.
		html.WithHardWraps(),
	),
)

// MarkdownHTML converts Markdown with the full GFM dialect. Exports use this instead of the
// editor's preview engine so tables, task lists and autolinks survive.
func MarkdownHTML(src string) (template.HTML, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(b.String()), nil
}

var pageTemplate = template.Must(template.New("note").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>body{max-width:760px;margin:40px auto;padding:0 16px;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;line-height:1.6}pre{background:#f4f6fb;padding:10px;border-radius:8px;overflow:auto}.meta{color:#667089;font-size:13px}</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Updated {{.Updated}}{{if .Pinned}} · pinned{{end}}</p>
{{.Body}}
</body>
</html>
`))

// RenderNoteHTML renders a note as a self-contained HTML page.
func RenderNoteHTML(n model.Note) (string, error) {
	body, err := MarkdownHTML(n.Content)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	err = pageTemplate.Execute(&b, struct {
		Title   string
		Updated string
		Pinned  bool
		Body    template.HTML
	}{
		Title:   records.DisplayTitle(n),
		Updated: n.Updated.UTC().Format("2006-01-02 15:04"),
		Pinned:  n.Pinned,
		Body:    body,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Package report turns the advisor's markdown into a styled, downloadable
// HTML document and signs the links used to fetch it.
package report

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const documentShell = `<html>
<head>
<meta charset="utf-8">
<title>Financial Report</title>
<style>
    body { font-family: Arial; padding: 20px; line-height: 1.6; }
    h1, h2 { color: #2E86C1; }
    table { width: 100%%; border-collapse: collapse; }
    th, td { border: 1px solid #ccc; padding: 8px; }
    th { background-color: #f2f2f2; }
</style>
</head>
<body>%s</body></html>
`

// Renderer converts advice markdown into the report document.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a markdown renderer with GFM tables enabled, since
// the advice prompt asks for markdown tables.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts markdown advice into a complete styled HTML document.
func (r *Renderer) Render(markdown string) (string, error) {
	body, err := r.RenderFragment(markdown)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(documentShell, body), nil
}

// RenderFragment converts markdown into a bare HTML fragment for embedding
// inside an existing page.
func (r *Renderer) RenderFragment(markdown string) (string, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return body.String(), nil
}

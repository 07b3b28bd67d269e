// ABOUTME: Standalone HTML export of a document, converting its markdown content with goldmark
// ABOUTME: The page wrapper is an embedded html/template so title and metadata are escaped

package views

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"

	"github.com/2389/docreview/internal/api"
)

//go:embed templates/document.html
var pageSource string

var pageTemplate = template.Must(template.New("document").Parse(pageSource))

// RenderHTML writes d as an HTML page.
func RenderHTML(w io.Writer, d *api.Document) error {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(d.Content), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}

	data := struct {
		ID             int64
		Title          string
		Classification string
		Body           template.HTML
	}{
		ID:             d.ID,
		Title:          d.Title,
		Classification: d.Classification,
		Body:           template.HTML(body.String()),
	}
	return pageTemplate.Execute(w, data)
}

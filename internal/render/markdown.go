// Package render converts assistant markdown into safe HTML for the
// console pages.
package render

import (
	"bytes"
	"fmt"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders markdown text to HTML.
//
// Raw HTML in the source is never passed through: model output is untrusted,
// so goldmark's default escaping stays on. Fenced code blocks get chroma
// syntax highlighting with CSS classes so the highlight palette follows the
// active theme.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown builds the renderer used for chat messages and markdown
// artifacts.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true),
					),
				),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
			),
		),
	}
}

// Render converts src to HTML. On renderer failure the source is returned
// escaped as preformatted text so the message is never lost.
func (m *Markdown) Render(src string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return fmt.Sprintf("<pre>%s</pre>", html.EscapeString(src))
	}
	return buf.String()
}

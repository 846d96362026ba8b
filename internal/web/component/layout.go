package component

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// navItem is one entry of the top navigation.
type navItem struct {
	key   string
	href  string
	label string
}

var navItems = []navItem{
	{"inquiry", "/", "Inquiry"},
	{"troubleshoot", "/troubleshoot", "Troubleshoot"},
	{"grafana", "/grafana", "Grafana Widget"},
	{"pii", "/pii", "PII Logs"},
	{"panels", "/panels", "Panel Editor"},
}

// PageProps configures the top-level page shell.
type PageProps struct {
	Title    string
	Active   string // nav highlight key
	Theme    string
	Themes   []string
	ThemeCSS string // css custom-property block from the theme manager
	Zoom     float64
	Body     templ.Component
}

// Page renders the full HTML document: theme variables, navigation, theme
// picker, and the page body.
func Page(p PageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw("<!DOCTYPE html>\n")
		h.rawf(`<html lang="en" data-theme="%s">`, esc(p.Theme))
		h.raw("<head>")
		h.raw(`<meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.rawf("<title>%s · Nimbus Console</title>", esc(p.Title))
		// Theme variables and zoom are inlined so the first paint is
		// already in the persisted theme (no flash of default).
		h.rawf("<style>%s</style>", p.ThemeCSS)
		h.raw(`<link rel="stylesheet" href="/static/css/app.css">`)
		h.raw("</head>")
		h.raw(`<body>`)

		h.raw(`<nav class="topnav" aria-label="Primary">`)
		h.raw(`<span class="brand">Nimbus</span>`)
		for _, item := range navItems {
			cls := "nav-link"
			if item.key == p.Active {
				cls += " active"
			}
			h.rawf(`<a class="%s" href="%s">%s</a>`, cls, item.href, esc(item.label))
		}
		if err := ThemePicker(ThemePickerProps{Current: p.Theme, Themes: p.Themes, Zoom: p.Zoom}).Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</nav>`)

		h.raw(`<main class="page">`)
		if h.err != nil {
			return h.err
		}
		if p.Body != nil {
			if err := p.Body.Render(ctx, w); err != nil {
				return fmt.Errorf("render page body: %w", err)
			}
		}
		h.raw(`</main>`)
		h.raw(`<script src="/static/js/app.js"></script>`)
		h.raw("</body></html>")
		return h.err
	})
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web/component"
)

// renderPage wraps a body component in the document shell with the current
// theme applied.
func renderPage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, tm *theme.Manager, title, active string, body templ.Component) {
	current, zoom := tm.Current()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := component.Page(component.PageProps{
		Title:    title,
		Active:   active,
		Theme:    current.Name,
		Themes:   theme.Names(),
		ThemeCSS: tm.CSS(),
		Zoom:     zoom,
		Body:     body,
	})
	if err := page.Render(r.Context(), w); err != nil {
		logger.Error("failed to render page", "title", title, "error", err)
	}
}

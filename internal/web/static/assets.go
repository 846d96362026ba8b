// Package static embeds the console's CSS and JavaScript assets.
package static

import (
	"embed"
	"net/http"
)

//go:embed css js
var assets embed.FS

// Handler serves the embedded assets under /css and /js.
func Handler() http.Handler {
	return http.FileServer(http.FS(assets))
}

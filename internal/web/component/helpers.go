package component

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// hw is a sticky-error HTML writer. The first write error wins; later
// writes become no-ops so component bodies stay linear.
type hw struct {
	w   io.Writer
	err error
}

// raw writes s verbatim. Only use for literal markup and pre-escaped HTML.
func (h *hw) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// rawf writes formatted markup verbatim. Dynamic arguments must already be
// escaped.
func (h *hw) rawf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

// text writes s HTML-escaped.
func (h *hw) text(s string) {
	h.raw(templ.EscapeString(s))
}

// esc escapes a dynamic value for use inside rawf markup.
func esc(s string) string {
	return templ.EscapeString(s)
}

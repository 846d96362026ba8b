package component

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ThemePickerProps configures the theme and zoom controls in the nav bar.
type ThemePickerProps struct {
	Current string
	Themes  []string
	Zoom    float64
}

// ThemePicker renders the theme selector and zoom stepper. Both submit as
// plain forms; the server persists the preference and re-renders.
func ThemePicker(p ThemePickerProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<form class="theme-picker" method="post" action="/prefs/theme">`)
		h.raw(`<label class="visually-hidden" for="theme-select">Theme</label>`)
		h.raw(`<select id="theme-select" name="theme" data-autosubmit>`)
		for _, name := range p.Themes {
			sel := ""
			if name == p.Current {
				sel = " selected"
			}
			h.rawf(`<option value="%s"%s>%s</option>`, esc(name), sel, esc(name))
		}
		h.raw(`</select>`)
		h.raw(`<noscript><button type="submit">Apply</button></noscript>`)
		h.raw(`</form>`)

		h.raw(`<form class="zoom-stepper" method="post" action="/prefs/zoom">`)
		h.rawf(`<input type="hidden" name="zoom" value="%.2f">`, p.Zoom)
		h.rawf(`<button type="submit" name="step" value="out" aria-label="Zoom out">&minus;</button>`)
		h.rawf(`<span class="zoom-value">%d%%</span>`, int(p.Zoom*100))
		h.rawf(`<button type="submit" name="step" value="in" aria-label="Zoom in">+</button>`)
		h.raw(`</form>`)

		return h.err
	})
}

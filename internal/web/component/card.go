package component

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/nimbusops/console/internal/marker"
)

// CommandCard renders an executable command proposal: server, command with
// a copy button, and the explanation.
func CommandCard(c marker.CmdCard) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<div class="cmd-card">`)
		if c.Server != "" {
			h.rawf(`<div class="cmd-card-server">%s</div>`, esc(c.Server))
		}
		h.raw(`<div class="cmd-card-command">`)
		h.rawf(`<code>%s</code>`, esc(c.Command))
		h.rawf(`<button type="button" class="copy-btn" data-copy="%s" aria-label="Copy command">Copy</button>`, esc(c.Command))
		h.raw(`</div>`)
		if c.Explanation != "" {
			h.rawf(`<p class="cmd-card-explanation">%s</p>`, esc(c.Explanation))
		}
		h.raw(`</div>`)
		return h.err
	})
}

// ProgressNote renders a transient progress or reasoning line emitted
// mid-stream.
func ProgressNote(kind marker.Kind, text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}
		cls := "progress-note"
		if kind == marker.KindReasoning {
			cls = "reasoning-note"
		}
		h.rawf(`<div class="%s">%s</div>`, cls, esc(text))
		return h.err
	})
}

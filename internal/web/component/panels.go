package component

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/nimbusops/console/internal/platform"
)

// PanelEditorProps configures the panel query editor page body.
type PanelEditorProps struct {
	Query   string
	Result  *platform.PanelQueryResult
	Preview string // pretty-printed snapshot data, empty until previewed
	Error   string // backend validation error rendered inline
}

// PanelEditor renders the PromQL editor with validation result and data
// preview.
func PanelEditor(p PanelEditorProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<section class="panel-editor">`)
		h.raw(`<h1>Panel query editor</h1>`)
		h.raw(`<form method="post" action="/panels/test-query">`)
		h.raw(`<label for="panel-query">Query</label>`)
		h.rawf(`<textarea id="panel-query" name="query" rows="4" spellcheck="false">%s</textarea>`, esc(p.Query))
		h.raw(`<div class="panel-actions">`)
		h.raw(`<button type="submit">Validate</button>`)
		h.raw(`<button type="submit" formaction="/panels/preview">Preview data</button>`)
		h.raw(`</div>`)
		h.raw(`</form>`)

		if p.Error != "" {
			h.rawf(`<p class="panel-error" role="alert">%s</p>`, esc(p.Error))
		}

		if p.Result != nil {
			cls, verdict := "panel-result ok", "Query is valid"
			if !p.Result.Valid {
				cls, verdict = "panel-result bad", "Query is invalid"
			}
			h.rawf(`<div class="%s">`, cls)
			h.rawf(`<p>%s</p>`, verdict)
			if p.Result.Error != "" {
				h.rawf(`<p class="panel-message">%s</p>`, esc(p.Result.Error))
			}
			if p.Result.Series > 0 {
				h.rawf(`<p class="panel-series">%d series</p>`, p.Result.Series)
			}
			h.raw(`</div>`)
		}

		if p.Preview != "" {
			h.rawf(`<pre class="panel-preview"><code class="language-json">%s</code></pre>`, esc(p.Preview))
		}
		h.raw(`</section>`)
		return h.err
	})
}

package component

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/nimbusops/console/internal/artifact"
)

// ArtifactPanelProps configures the canvas panel: the active artifact plus
// the thumbnail rail.
type ArtifactPanelProps struct {
	Active       *artifact.Artifact
	ActiveHTML   string // pre-rendered markdown body for markdown artifacts
	All          []*artifact.Artifact
	Pinned       map[string]bool
	ChartPayload string // JSON chart spec for chart artifacts, empty otherwise
}

// ArtifactPanel renders the artifact canvas: active artifact view, action
// row, and thumbnails for switching.
func ArtifactPanel(p ArtifactPanelProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<aside class="artifact-panel" id="artifact-panel" aria-label="Artifacts">`)
		if p.Active == nil {
			h.raw(`<p class="artifact-empty">No artifacts yet.</p>`)
		} else {
			if err := artifactView(ctx, w, p); err != nil {
				return err
			}
		}

		if len(p.All) > 0 {
			h.raw(`<div class="artifact-thumbs" role="tablist">`)
			if h.err != nil {
				return h.err
			}
			for _, a := range p.All {
				active := p.Active != nil && a.ID == p.Active.ID
				if err := ArtifactThumb(a, active, p.Pinned[a.ID]).Render(ctx, w); err != nil {
					return err
				}
			}
			h.raw(`</div>`)
			h.raw(`<form method="post" action="/artifacts/clear" class="artifact-clear">`)
			h.raw(`<button type="submit">Clear canvas</button>`)
			h.raw(`</form>`)
		}
		h.raw(`</aside>`)
		return h.err
	})
}

// artifactView writes the active artifact with its header and actions.
func artifactView(ctx context.Context, w io.Writer, p ArtifactPanelProps) error {
	a := p.Active
	h := &hw{w: w}

	h.rawf(`<article class="artifact" data-artifact-id="%s" data-artifact-type="%s">`, esc(a.ID), esc(string(a.Type)))
	h.raw(`<header class="artifact-header">`)
	h.rawf(`<h2 class="artifact-title">%s</h2>`, esc(a.Title))
	h.rawf(`<span class="artifact-type">%s</span>`, esc(string(a.Type)))

	h.raw(`<div class="artifact-actions">`)
	pinAction, pinLabel := "/artifacts/"+a.ID+"/pin", "Pin"
	if p.Pinned[a.ID] {
		pinAction, pinLabel = "/artifacts/"+a.ID+"/unpin", "Unpin"
	}
	h.rawf(`<form method="post" action="%s"><button type="submit">%s</button></form>`, esc(pinAction), pinLabel)
	h.rawf(`<a class="artifact-export" href="/artifacts/%s/export">Export</a>`, esc(a.ID))
	h.rawf(`<button type="button" class="copy-btn" data-copy-artifact="%s">Copy</button>`, esc(a.ID))
	h.raw(`</div>`)
	h.raw(`</header>`)
	if h.err != nil {
		return h.err
	}

	if err := ArtifactBody(a, p.ActiveHTML, p.ChartPayload).Render(ctx, w); err != nil {
		return err
	}

	h.raw(`</article>`)
	return h.err
}

// ArtifactThumb renders one thumbnail in the artifact rail.
func ArtifactThumb(a *artifact.Artifact, active, pinned bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}
		cls := "artifact-thumb"
		if active {
			cls += " active"
		}
		if pinned {
			cls += " pinned"
		}
		h.rawf(`<form method="post" action="/artifacts/%s/activate">`, esc(a.ID))
		h.rawf(`<button type="submit" class="%s" role="tab" aria-selected="%t">`, cls, active)
		h.rawf(`<span class="thumb-type">%s</span>`, esc(string(a.Type)))
		h.rawf(`<span class="thumb-title">%s</span>`, esc(a.Title))
		if pinned {
			h.raw(`<span class="thumb-pin" aria-label="Pinned">&#9733;</span>`)
		}
		h.raw(`</button></form>`)
		return h.err
	})
}

// ArtifactBody renders the type-specific artifact view. renderedHTML is the
// markdown renderer output for markdown artifacts; chartPayload is the JSON
// spec for chart artifacts. Both are ignored for other types.
func ArtifactBody(a *artifact.Artifact, renderedHTML, chartPayload string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		switch a.Type {
		case artifact.TypeTable:
			writeTable(h, artifact.ParseTable(a.Content))
		case artifact.TypeAlert:
			writeAlerts(h, artifact.ClassifyAlerts(a.Content))
		case artifact.TypeChart:
			writeChart(h, a, chartPayload)
		case artifact.TypeMarkdown:
			h.rawf(`<div class="artifact-markdown">%s</div>`, renderedHTML)
		case artifact.TypeList, artifact.TypeMetrics:
			writeList(h, a.Content)
		default: // code, json, yaml
			lang := a.Language
			if lang == "" {
				lang = string(a.Type)
			}
			h.rawf(`<pre class="artifact-code"><code class="language-%s">%s</code></pre>`, esc(lang), esc(a.Content))
		}
		return h.err
	})
}

func writeTable(h *hw, t artifact.Table) {
	h.raw(`<div class="artifact-table-wrap"><table class="artifact-table">`)
	if len(t.Header) > 0 {
		h.raw(`<thead><tr>`)
		for _, cell := range t.Header {
			h.rawf(`<th scope="col">%s</th>`, esc(cell))
		}
		h.raw(`</tr></thead>`)
	}
	h.raw(`<tbody>`)
	for _, row := range t.Rows {
		h.raw(`<tr>`)
		for _, cell := range row {
			h.rawf(`<td>%s</td>`, esc(cell))
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table></div>`)
}

func writeAlerts(h *hw, alerts []artifact.AlertLine) {
	h.raw(`<ul class="artifact-alerts">`)
	for _, a := range alerts {
		h.rawf(`<li class="alert-%s">%s</li>`, string(a.Severity), esc(a.Text))
	}
	h.raw(`</ul>`)
}

// writeChart emits the canvas node and the chart payload as a data attribute.
// Drawing happens in app.js after the node is in the DOM; the payload never
// executes as markup.
func writeChart(h *hw, a *artifact.Artifact, payload string) {
	if payload == "" {
		payload = a.Content
	}
	// Round-trip through json.Marshal so the attribute holds exactly one
	// JSON document, even if the payload had stray whitespace.
	compact := payload
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err == nil {
		if b, err := json.Marshal(raw); err == nil {
			compact = string(b)
		}
	}
	h.rawf(`<div class="artifact-chart" data-chart="%s">`, esc(compact))
	h.rawf(`<canvas aria-label="%s chart"></canvas>`, esc(a.Title))
	h.raw(`</div>`)
}

func writeList(h *hw, content string) {
	h.raw(`<ul class="artifact-list">`)
	for _, line := range splitLines(content) {
		h.rawf(`<li>%s</li>`, esc(line))
	}
	h.raw(`</ul>`)
}

// splitLines returns trimmed non-empty lines with bullet prefixes removed.
func splitLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

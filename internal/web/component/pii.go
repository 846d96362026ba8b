package component

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/nimbusops/console/internal/platform"
)

// piiTimeFormat is the display format for log timestamps.
const piiTimeFormat = "2006-01-02 15:04:05"

// PIIFilterProps echoes the current filter values back into the form.
type PIIFilterProps struct {
	Q          string
	EntityType string
	Engine     string
	SourceType string
	StartDate  string
	EndDate    string
}

// PIIFilters renders the search and filter form above the log table.
func PIIFilters(p PIIFilterProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<form class="pii-filters" method="get" action="/pii">`)
		h.rawf(`<input type="search" name="q" placeholder="Search snippets" value="%s">`, esc(p.Q))
		h.rawf(`<input type="text" name="entity_type" placeholder="Entity type" value="%s">`, esc(p.EntityType))
		h.rawf(`<input type="text" name="engine" placeholder="Engine" value="%s">`, esc(p.Engine))
		h.rawf(`<input type="text" name="source_type" placeholder="Source type" value="%s">`, esc(p.SourceType))
		h.rawf(`<input type="date" name="start_date" value="%s">`, esc(p.StartDate))
		h.rawf(`<input type="date" name="end_date" value="%s">`, esc(p.EndDate))
		h.raw(`<button type="submit">Filter</button>`)
		h.raw(`<a class="pii-export" href="/pii/export`)
		if q := FilterQuery(p); q != "" {
			h.rawf(`?%s`, q)
		}
		h.raw(`">Export CSV</a>`)
		h.raw(`</form>`)
		return h.err
	})
}

// FilterQuery rebuilds the query string for links that carry the filter.
func FilterQuery(p PIIFilterProps) string {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", p.Q)
	set("entity_type", p.EntityType)
	set("engine", p.Engine)
	set("source_type", p.SourceType)
	set("start_date", p.StartDate)
	set("end_date", p.EndDate)
	return v.Encode()
}

// PIITable renders one page of PII detection logs.
func PIITable(page platform.PIIPage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		if len(page.Logs) == 0 {
			h.raw(`<p class="pii-empty">No PII detections match the current filter.</p>`)
			return h.err
		}

		h.raw(`<table class="pii-table">`)
		h.raw(`<thead><tr>` +
			`<th scope="col">Time</th>` +
			`<th scope="col">Entity</th>` +
			`<th scope="col">Engine</th>` +
			`<th scope="col">Source</th>` +
			`<th scope="col">Snippet</th>` +
			`<th scope="col">Score</th>` +
			`</tr></thead><tbody>`)
		for _, l := range page.Logs {
			h.raw(`<tr>`)
			h.rawf(`<td><a href="/pii/%s">%s</a></td>`, esc(l.ID), esc(l.Timestamp.Format(piiTimeFormat)))
			h.rawf(`<td><span class="pii-entity">%s</span></td>`, esc(l.EntityType))
			h.rawf(`<td>%s</td>`, esc(l.Engine))
			h.rawf(`<td>%s</td>`, esc(l.SourceType))
			h.rawf(`<td class="pii-snippet">%s</td>`, esc(l.Snippet))
			h.rawf(`<td>%.2f</td>`, l.Score)
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

// PIIDetail renders the full record view of one detection.
func PIIDetail(l platform.PIILog) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<article class="pii-detail">`)
		h.rawf(`<h1>Detection %s</h1>`, esc(l.ID))
		h.raw(`<dl>`)
		row := func(label, value string) {
			h.rawf(`<dt>%s</dt><dd>%s</dd>`, label, esc(value))
		}
		row("Timestamp", l.Timestamp.Format(time.RFC3339))
		row("Entity type", l.EntityType)
		row("Engine", l.Engine)
		row("Source type", l.SourceType)
		row("Source", l.Source)
		row("Score", fmt.Sprintf("%.2f", l.Score))
		h.raw(`</dl>`)
		h.rawf(`<pre class="pii-snippet-full">%s</pre>`, esc(l.Snippet))
		h.raw(`<a href="/pii">Back to logs</a>`)
		h.raw(`</article>`)
		return h.err
	})
}

// PIIStatsView renders the aggregate counters above the table.
func PIIStatsView(s platform.PIIStats) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<section class="pii-stats" aria-label="Detection statistics">`)
		h.rawf(`<div class="stat"><span class="stat-value">%d</span><span class="stat-label">total detections</span></div>`, s.Total)
		writeStatGroup(h, "By entity", s.ByEntityType)
		writeStatGroup(h, "By engine", s.ByEngine)
		writeStatGroup(h, "By source", s.BySourceType)
		h.raw(`</section>`)
		return h.err
	})
}

// writeStatGroup writes one breakdown list in stable key order.
func writeStatGroup(h *hw, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h.rawf(`<div class="stat-group"><span class="stat-group-label">%s</span><ul>`, label)
	for _, k := range keys {
		h.rawf(`<li>%s: %d</li>`, esc(k), counts[k])
	}
	h.raw(`</ul></div>`)
}

// PaginationProps drives the pager under a table.
type PaginationProps struct {
	Page     int
	Limit    int
	Total    int
	BasePath string
	Query    string // extra query string to carry across pages, no leading &
}

// Pagination renders previous/next links and the page indicator.
func Pagination(p PaginationProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if p.Limit <= 0 {
			return nil
		}
		pages := (p.Total + p.Limit - 1) / p.Limit
		if pages <= 1 {
			return nil
		}

		h := &hw{w: w}
		href := func(page int) string {
			q := "page=" + strconv.Itoa(page)
			if p.Query != "" {
				q += "&" + p.Query
			}
			return p.BasePath + "?" + q
		}

		h.raw(`<nav class="pagination" aria-label="Pagination">`)
		if p.Page > 1 {
			h.rawf(`<a rel="prev" href="%s">&larr; Previous</a>`, esc(href(p.Page-1)))
		}
		h.rawf(`<span class="page-indicator">Page %d of %d</span>`, p.Page, pages)
		if p.Page < pages {
			h.rawf(`<a rel="next" href="%s">Next &rarr;</a>`, esc(href(p.Page+1)))
		}
		h.raw(`</nav>`)
		return h.err
	})
}

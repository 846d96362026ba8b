package component

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/nimbusops/console/internal/platform"
)

// ChatPageProps configures a chat surface page body.
type ChatPageProps struct {
	Surface    string // "inquiry", "troubleshoot", or "grafana"
	SessionID  string
	Messages   []MessageProps // history, oldest first
	Providers  []platform.Provider
	ProviderID string
	Page       string // embedding page context for the widget surfaces
	Artifacts  templ.Component
}

// ChatPage renders the conversation column, the input form, and the
// artifact canvas.
func ChatPage(p ChatPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.rawf(`<div class="chat-layout" data-surface="%s">`, esc(p.Surface))
		h.raw(`<section class="chat-column">`)

		h.raw(`<header class="chat-header">`)
		if len(p.Providers) > 0 {
			h.rawf(`<form method="post" action="/chat/provider?surface=%s">`, esc(p.Surface))
			h.raw(`<label class="visually-hidden" for="provider-select">Model provider</label>`)
			h.raw(`<select id="provider-select" name="provider_id" data-autosubmit>`)
			for _, prov := range p.Providers {
				sel := ""
				if prov.ID == p.ProviderID {
					sel = " selected"
				}
				h.rawf(`<option value="%s"%s>%s</option>`, esc(prov.ID), sel, esc(prov.Name))
			}
			h.raw(`</select>`)
			h.raw(`<noscript><button type="submit">Switch</button></noscript>`)
			h.raw(`</form>`)
		}
		h.rawf(`<a class="new-chat" href="/chat/new?surface=%s">New chat</a>`, esc(p.Surface))
		h.raw(`</header>`)
		if h.err != nil {
			return h.err
		}

		h.rawf(`<div class="messages" id="messages" data-session="%s">`, esc(p.SessionID))
		if h.err != nil {
			return h.err
		}
		for _, m := range p.Messages {
			if err := MessageBubble(m).Render(ctx, w); err != nil {
				return err
			}
		}
		h.raw(`</div>`)

		h.rawf(`<form class="chat-input" method="post" action="/chat/send" data-chat-form>`)
		h.rawf(`<input type="hidden" name="surface" value="%s">`, esc(p.Surface))
		if p.Page != "" {
			h.rawf(`<input type="hidden" name="page" value="%s">`, esc(p.Page))
		}
		h.raw(`<label class="visually-hidden" for="chat-query">Ask</label>`)
		h.raw(`<textarea id="chat-query" name="query" rows="2" placeholder="Ask about your infrastructure" required></textarea>`)
		h.raw(`<button type="submit">Send</button>`)
		h.raw(`</form>`)

		h.raw(`</section>`)
		if h.err != nil {
			return h.err
		}

		if p.Artifacts != nil {
			if err := p.Artifacts.Render(ctx, w); err != nil {
				return err
			}
		}
		h.raw(`</div>`)
		return h.err
	})
}

// PIIPageProps configures the PII log viewer page body.
type PIIPageProps struct {
	Filters    PIIFilterProps
	Stats      *platform.PIIStats
	Page       platform.PIIPage
	Pagination PaginationProps
}

// PIIPage renders stats, filters, the log table, and the pager.
func PIIPage(p PIIPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.raw(`<section class="pii-page">`)
		h.raw(`<h1>PII detection logs</h1>`)
		if h.err != nil {
			return h.err
		}

		if p.Stats != nil {
			if err := PIIStatsView(*p.Stats).Render(ctx, w); err != nil {
				return err
			}
		}
		if err := PIIFilters(p.Filters).Render(ctx, w); err != nil {
			return err
		}
		if err := PIITable(p.Page).Render(ctx, w); err != nil {
			return err
		}
		if err := Pagination(p.Pagination).Render(ctx, w); err != nil {
			return err
		}

		h.raw(`</section>`)
		return h.err
	})
}

package component

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// MessageProps configures one chat message bubble.
type MessageProps struct {
	ID          string
	Role        string // "user" or "assistant"
	Content     string // plain text, escaped on output
	ContentHTML string // pre-rendered markdown; wins over Content when set
	Timestamp   string
}

// MessageBubble renders a completed chat message.
func MessageBubble(p MessageProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		role := "assistant"
		if p.Role == "user" {
			role = "user"
		}
		h.rawf(`<div class="message %s"`, role)
		if p.ID != "" {
			h.rawf(` id="msg-%s"`, esc(p.ID))
		}
		h.raw(`>`)
		h.rawf(`<div class="message-content" id="msg-content-%s">`, esc(p.ID))
		if p.ContentHTML != "" {
			h.raw(p.ContentHTML)
		} else {
			h.text(p.Content)
		}
		h.raw(`</div>`)
		if p.Timestamp != "" {
			h.rawf(`<time class="message-time">%s</time>`, esc(p.Timestamp))
		}
		h.raw(`</div>`)
		return h.err
	})
}

// StreamShell renders the assistant message placeholder that a streaming
// response fills in. The data attributes tell app.js where to open the
// per-message event stream.
func StreamShell(msgID, surface, query, page string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}

		h.rawf(`<div class="message assistant streaming" id="msg-%s" data-stream-msg="%s" data-stream-surface="%s" data-stream-query="%s"`,
			esc(msgID), esc(msgID), esc(surface), esc(query))
		if page != "" {
			h.rawf(` data-stream-page="%s"`, esc(page))
		}
		h.raw(`>`)
		h.rawf(`<div class="message-content" id="msg-content-%s" aria-live="polite"></div>`, esc(msgID))
		h.rawf(`<div class="message-extras" id="msg-extras-%s"></div>`, esc(msgID))
		h.raw(`<button class="stop-btn" type="button" data-stream-stop>Stop</button>`)
		h.raw(`</div>`)
		return h.err
	})
}

// ErrorBubble renders an inline stream error in the conversation.
func ErrorBubble(msgID, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &hw{w: w}
		h.rawf(`<div class="message assistant error" id="msg-error-%s" role="alert">`, esc(msgID))
		h.text(message)
		h.raw(`</div>`)
		return h.err
	})
}

// ToolsNote renders the "tools used" footnote under an assistant message.
func ToolsNote(names []string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(names) == 0 {
			return nil
		}
		h := &hw{w: w}
		h.raw(`<div class="tools-note">Tools: `)
		for i, name := range names {
			if i > 0 {
				h.raw(", ")
			}
			h.rawf(`<code>%s</code>`, esc(name))
		}
		h.raw(`</div>`)
		return h.err
	})
}

// SuggestionChips renders follow-up suggestion buttons. Each chip resubmits
// the chat form with the suggestion as the query.
func SuggestionChips(items []string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(items) == 0 {
			return nil
		}
		h := &hw{w: w}
		h.raw(`<div class="suggestions" role="group" aria-label="Suggested follow-ups">`)
		for _, item := range items {
			h.rawf(`<button type="button" class="suggestion-chip" data-suggestion="%s">%s</button>`,
				esc(item), esc(item))
		}
		h.raw(`</div>`)
		return h.err
	})
}

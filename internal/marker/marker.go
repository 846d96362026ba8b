// Package marker implements the inline marker sub-language embedded in
// assistant message text.
//
// The backend (and the model it fronts) interleaves prose with bracket tags
// such as [ARTIFACT]{...}[/ARTIFACT] or [SUGGESTIONS][...][/SUGGESTIONS].
// Extract walks the text once, left to right, and splits it into renderable
// residual prose and decoded marker spans. A tag whose closing half has not
// arrived yet is held back rather than shown as raw bracket syntax, which is
// what makes the extractor safe to re-run over a partially streamed buffer.
package marker

import "strings"

// Kind identifies a marker tag pair.
type Kind string

const (
	KindCmdCard     Kind = "CMD_CARD"
	KindSuggestions Kind = "SUGGESTIONS"
	KindArtifact    Kind = "ARTIFACT"
	KindChart       Kind = "CHART"
	KindFileOpen    Kind = "FILE_OPEN"
	KindChangesetID Kind = "CHANGESET_ID"
	KindProgress    Kind = "PROGRESS"
	KindReasoning   Kind = "REASONING"
)

// Kinds lists every recognized marker kind in scan order.
// When tags overlap (malformed output), first match by scan order wins.
var Kinds = []Kind{
	KindCmdCard,
	KindSuggestions,
	KindArtifact,
	KindChart,
	KindFileOpen,
	KindChangesetID,
	KindProgress,
	KindReasoning,
}

// Open returns the opening tag, e.g. "[ARTIFACT]".
func (k Kind) Open() string { return "[" + string(k) + "]" }

// Close returns the closing tag, e.g. "[/ARTIFACT]".
func (k Kind) Close() string { return "[/" + string(k) + "]" }

// Span is one fully closed marker occurrence.
//
// Start and End are byte offsets of the raw match within the scanned text.
// Because the streaming buffer is append-only, offsets are stable across
// repeated extraction passes and serve as the span's identity for
// emit-exactly-once bookkeeping.
type Span struct {
	Kind    Kind
	Start   int
	End     int
	Raw     string
	Payload string
}

// Result is the outcome of one extraction pass.
type Result struct {
	// Spans holds every fully closed marker in left-to-right order.
	Spans []Span

	// Residual is the text with all closed marker spans removed and any
	// held tail excluded. Non-marker text is preserved verbatim,
	// whitespace included.
	Residual string

	// Held is the suffix from the last unmatched opening tag (or a tail
	// that may still grow into one) to end-of-text. It must not be shown
	// to the user until the closing tag arrives or the stream ends.
	Held string
}

// Extract performs a single-pass scan over text.
//
// The scan keeps a cursor and never backtracks across consumed spans, so
// extraction is order-preserving and each byte is visited once. A '[' that
// does not begin a recognized tag is ordinary prose.
func Extract(text string) Result {
	var (
		res      Result
		residual strings.Builder
		cursor   int
	)

	for cursor < len(text) {
		i := strings.IndexByte(text[cursor:], '[')
		if i == -1 {
			residual.WriteString(text[cursor:])
			cursor = len(text)
			break
		}
		i += cursor

		kind, ok := openTagAt(text, i)
		if !ok {
			if tailCouldBeTag(text[i:]) {
				// Possible tag split across a chunk boundary.
				residual.WriteString(text[cursor:i])
				res.Held = text[i:]
				res.Residual = residual.String()
				return res
			}
			// Plain bracket in prose.
			residual.WriteString(text[cursor : i+1])
			cursor = i + 1
			continue
		}

		payloadStart := i + len(kind.Open())
		closeIdx := strings.Index(text[payloadStart:], kind.Close())
		if closeIdx == -1 {
			// Opening tag with no closing tag yet: suppress to end.
			residual.WriteString(text[cursor:i])
			res.Held = text[i:]
			res.Residual = residual.String()
			return res
		}

		end := payloadStart + closeIdx + len(kind.Close())
		residual.WriteString(text[cursor:i])
		res.Spans = append(res.Spans, Span{
			Kind:    kind,
			Start:   i,
			End:     end,
			Raw:     text[i:end],
			Payload: text[payloadStart : payloadStart+closeIdx],
		})
		cursor = end
	}

	res.Residual = residual.String()
	return res
}

// openTagAt reports whether a complete opening tag starts at offset i.
func openTagAt(text string, i int) (Kind, bool) {
	for _, k := range Kinds {
		if strings.HasPrefix(text[i:], k.Open()) {
			return k, true
		}
	}
	return "", false
}

// tailCouldBeTag reports whether s (which starts with '[') is a strict
// prefix of some opening or closing tag. Such a tail may still complete
// once the next chunk arrives, so it must be held back.
func tailCouldBeTag(s string) bool {
	for _, k := range Kinds {
		if open := k.Open(); len(s) < len(open) && strings.HasPrefix(open, s) {
			return true
		}
		if cl := k.Close(); len(s) < len(cl) && strings.HasPrefix(cl, s) {
			return true
		}
	}
	return false
}

package marker

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// CmdCard is a suggested shell command offered to the user as a card.
type CmdCard struct {
	Server      string `json:"server"`
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
}

// ArtifactPayload is the declared body of an [ARTIFACT] span.
//
// Content must be a JSON string in the wire payload; spans carrying object
// or array content are treated as hallucinated and rejected.
type ArtifactPayload struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"-"`
}

// Chart is the body of a [CHART] span, consumed inside artifact rendering.
type Chart struct {
	Type     string         `json:"type"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartDataset is one series of a Chart.
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// TrustedArtifactIDPrefix gates backend-declared artifact ids. Ids are
// minted by the tool layer, so anything else appearing in free-form model
// text is a fabricated tool result and must not reach the store.
const TrustedArtifactIDPrefix = "tool-"

// DecodeCmdCard parses a CMD_CARD payload.
//
// Two wire shapes exist: the newer JSON object and the legacy line format
// (`server:` / `command:` / `explanation:` in that order, explanation running
// to the end of the payload). A payload matching neither shape yields
// ok=false and the span is simply not rendered.
func DecodeCmdCard(payload string, logger *slog.Logger) (CmdCard, bool) {
	logger = orDefault(logger)
	trimmed := strings.TrimSpace(payload)

	if strings.HasPrefix(trimmed, "{") {
		var card CmdCard
		if err := json.Unmarshal([]byte(trimmed), &card); err != nil {
			logger.Debug("dropping command card with malformed JSON payload", "error", err)
			return CmdCard{}, false
		}
		if card.Command == "" {
			logger.Debug("dropping command card without command field")
			return CmdCard{}, false
		}
		return card, true
	}

	return decodeCmdCardLines(trimmed, logger)
}

func decodeCmdCardLines(payload string, logger *slog.Logger) (CmdCard, bool) {
	var (
		card        CmdCard
		explanation []string
		inExplain   bool
	)
	for _, line := range strings.Split(payload, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inExplain:
			explanation = append(explanation, line)
		case strings.HasPrefix(trimmed, "server:"):
			card.Server = strings.TrimSpace(strings.TrimPrefix(trimmed, "server:"))
		case strings.HasPrefix(trimmed, "command:"):
			card.Command = strings.TrimSpace(strings.TrimPrefix(trimmed, "command:"))
		case strings.HasPrefix(trimmed, "explanation:"):
			explanation = append(explanation, strings.TrimSpace(strings.TrimPrefix(trimmed, "explanation:")))
			inExplain = true
		}
	}
	card.Explanation = strings.TrimSpace(strings.Join(explanation, "\n"))

	if card.Server == "" || card.Command == "" {
		logger.Debug("dropping command card with incomplete line payload")
		return CmdCard{}, false
	}
	return card, true
}

// DecodeSuggestions parses a SUGGESTIONS payload into follow-up strings.
//
// The payload is a JSON array that models like to wrap in a markdown fence,
// line-break mid-element, or quote with single quotes. Fences are stripped
// and inner whitespace is collapsed before parsing. When the payload contains
// no double quote at all, single quotes are swapped for double quotes; this
// is a narrow repair for one known malformation, not JSON5 parsing, and its
// use is logged. Parse failure yields nil; the span is still stripped from
// display text by the caller.
func DecodeSuggestions(payload string, logger *slog.Logger) []string {
	logger = orDefault(logger)

	trimmed := stripFence(strings.TrimSpace(payload))
	trimmed = strings.Join(strings.Fields(trimmed), " ")
	if trimmed == "" {
		return nil
	}

	if !strings.Contains(trimmed, `"`) && strings.Contains(trimmed, "'") {
		logger.Debug("repairing single-quoted suggestions payload")
		trimmed = strings.ReplaceAll(trimmed, "'", `"`)
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(trimmed), &suggestions); err != nil {
		logger.Debug("dropping malformed suggestions payload", "error", err)
		return nil
	}
	return suggestions
}

// DecodeArtifact parses and validates an ARTIFACT payload.
//
// Two gates apply before anything reaches the artifact store:
//   - content must be a JSON string; object or array content is discarded
//   - a declared id must carry the trusted tool prefix
//
// An absent id passes the gate; the caller assigns a client-generated one.
func DecodeArtifact(payload string, logger *slog.Logger) (ArtifactPayload, bool) {
	logger = orDefault(logger)

	var raw struct {
		ID      string          `json:"id"`
		Type    string          `json:"type"`
		Title   string          `json:"title"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &raw); err != nil {
		logger.Debug("dropping artifact with malformed JSON payload", "error", err)
		return ArtifactPayload{}, false
	}

	var content string
	if err := json.Unmarshal(raw.Content, &content); err != nil {
		logger.Warn("rejecting artifact with non-string content", "id", raw.ID)
		return ArtifactPayload{}, false
	}

	if raw.ID != "" && !strings.HasPrefix(raw.ID, TrustedArtifactIDPrefix) {
		logger.Warn("rejecting artifact with untrusted id", "id", raw.ID)
		return ArtifactPayload{}, false
	}

	return ArtifactPayload{
		ID:      raw.ID,
		Type:    raw.Type,
		Title:   raw.Title,
		Content: content,
	}, true
}

// DecodeChart parses a CHART payload.
func DecodeChart(payload string, logger *slog.Logger) (Chart, bool) {
	logger = orDefault(logger)

	var chart Chart
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &chart); err != nil {
		logger.Debug("dropping malformed chart payload", "error", err)
		return Chart{}, false
	}
	return chart, true
}

// stripFence removes a surrounding markdown code fence, with or without a
// language tag, leaving the fenced body.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		// Drop the info string ("json", "yaml", ...) on the fence line.
		if !strings.ContainsAny(body[:nl], "[{") {
			body = body[nl+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

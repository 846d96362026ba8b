package artifact

import (
	"encoding/json"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

// Export serializes an artifact for download and returns the suggested
// filename alongside the file body.
//
// Mapping: json → .json (pretty-printed when the content parses), yaml →
// .yaml (validated, passed through), table → .csv, everything else → .txt.
func Export(a *Artifact, logger *slog.Logger) (filename string, data []byte) {
	if logger == nil {
		logger = slog.Default()
	}

	base := exportBasename(a)
	switch a.Type {
	case TypeJSON:
		return base + ".json", exportJSON(a, logger)
	case TypeYAML:
		return base + ".yaml", exportYAML(a, logger)
	case TypeTable:
		return base + ".csv", []byte(TableToCSV(a.Content))
	default:
		return base + ".txt", []byte(a.Content)
	}
}

func exportJSON(a *Artifact, logger *slog.Logger) []byte {
	var v any
	if err := json.Unmarshal([]byte(a.Content), &v); err != nil {
		logger.Warn("exporting json artifact with unparseable content as-is",
			"id", a.ID, "error", err)
		return []byte(a.Content)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return []byte(a.Content)
	}
	return pretty
}

func exportYAML(a *Artifact, logger *slog.Logger) []byte {
	var v any
	if err := yaml.Unmarshal([]byte(a.Content), &v); err != nil {
		logger.Warn("exporting yaml artifact with unparseable content as-is",
			"id", a.ID, "error", err)
	}
	return []byte(a.Content)
}

// TableToCSV converts pipe-delimited markdown table content to CSV.
//
// The markdown separator row is dropped, every cell is quoted, and embedded
// quote characters are doubled. A 1-header + separator + N-row table yields
// exactly 1+N CSV lines.
func TableToCSV(content string) string {
	t := ParseTable(content)
	var lines []string
	if t.Header != nil {
		lines = append(lines, csvLine(t.Header))
	}
	for _, row := range t.Rows {
		lines = append(lines, csvLine(row))
	}
	return strings.Join(lines, "\n")
}

func csvLine(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// exportBasename derives a safe filename stem from the artifact title,
// falling back to the id.
func exportBasename(a *Artifact) string {
	name := strings.TrimSpace(a.Title)
	if name == "" {
		name = a.ID
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "artifact"
	}
	return b.String()
}

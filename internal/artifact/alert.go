package artifact

import "strings"

// Severity buckets an alert line for display styling.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// AlertLine is one classified bullet of an alert artifact.
type AlertLine struct {
	Text     string
	Severity Severity
}

// ClassifyAlerts splits alert content into bullet lines and assigns each a
// severity by case-insensitive keyword match. Lines that match nothing are
// info.
func ClassifyAlerts(content string) []AlertLine {
	var alerts []AlertLine
	for _, line := range strings.Split(content, "\n") {
		text := strings.TrimSpace(line)
		text = strings.TrimLeft(text, "-*• \t")
		if text == "" {
			continue
		}
		alerts = append(alerts, AlertLine{Text: text, Severity: classify(text)})
	}
	return alerts
}

func classify(text string) Severity {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "critical", "error", "down"):
		return SeverityCritical
	case containsAny(lower, "warning", "warn", "high"):
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

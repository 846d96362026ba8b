package artifact

import "strings"

// Table is a parsed pipe-delimited markdown table.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTable parses markdown table content.
//
// The first pipe line is the header, a following dash/colon separator line
// is skipped, and every remaining pipe line becomes a data row. Rows are
// split independently, so ragged rows pass through with their own cell
// count rather than being padded or rejected.
func ParseTable(content string) Table {
	var t Table
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitRow(line)
		switch {
		case t.Header == nil:
			t.Header = cells
		case isSeparatorRow(cells):
			// Markdown separator row, not data.
		default:
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

// splitRow splits one table line into trimmed cells, dropping the empty
// fragments produced by leading and trailing pipes.
func splitRow(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// isSeparatorRow reports whether every cell is made of dashes and optional
// alignment colons, i.e. the markdown header separator.
func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c == "" {
			return false
		}
		for _, r := range c {
			if r != '-' && r != ':' {
				return false
			}
		}
	}
	return true
}

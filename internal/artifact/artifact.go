package artifact

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type classifies artifact content for type-specific rendering.
type Type string

const (
	TypeTable    Type = "table"
	TypeCode     Type = "code"
	TypeJSON     Type = "json"
	TypeYAML     Type = "yaml"
	TypeMarkdown Type = "markdown"
	TypeList     Type = "list"
	TypeAlert    Type = "alert"
	TypeMetrics  Type = "metrics"
	TypeChart    Type = "chart"
)

// ParseType maps a wire type string to a Type, defaulting unknown values to
// TypeCode so a misdeclared artifact still renders as a plain block.
func ParseType(s string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeTable, TypeCode, TypeJSON, TypeYAML, TypeMarkdown,
		TypeList, TypeAlert, TypeMetrics, TypeChart:
		return t
	default:
		return TypeCode
	}
}

// Artifact is one structured result shown in the side panel.
//
// RawContent keeps the payload exactly as it arrived; Content may differ
// after normalization (today they match, the split exists so export always
// has the untouched original).
type Artifact struct {
	ID         string
	Type       Type
	Title      string
	Content    string
	RawContent string
	Language   string
	Timestamp  time.Time
}

// NewClientID mints an id for an artifact the backend declared without one.
// The "artifact-" prefix keeps client-generated ids visually distinct from
// trusted "tool-" ids.
func NewClientID() string {
	return fmt.Sprintf("artifact-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

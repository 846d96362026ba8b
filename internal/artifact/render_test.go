package artifact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTable(t *testing.T) {
	t.Parallel()

	content := `| Pod | Status | Restarts |
|-----|:------:|----------|
| api-0 | Running | 0 |
| api-1 | CrashLoopBackOff | 12 |`

	table := ParseTable(content)
	assert.Equal(t, []string{"Pod", "Status", "Restarts"}, table.Header)
	if assert.Len(t, table.Rows, 2) {
		assert.Equal(t, []string{"api-1", "CrashLoopBackOff", "12"}, table.Rows[1])
	}
}

func TestParseTable_RaggedRows(t *testing.T) {
	t.Parallel()

	content := `| a | b | c |
|---|---|---|
| 1 | 2 |
| 1 | 2 | 3 | 4 |`

	table := ParseTable(content)
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	// Per-row splitting: ragged rows keep their own cell counts.
	assert.Len(t, table.Rows[0], 2)
	assert.Len(t, table.Rows[1], 4)
}

func TestClassifyAlerts(t *testing.T) {
	t.Parallel()

	content := `- CRITICAL: api-gateway is down
- Warning: memory usage high on node-3
- deployment completed
* Error connecting to redis`

	alerts := ClassifyAlerts(content)
	if len(alerts) != 4 {
		t.Fatalf("alerts = %d, want 4", len(alerts))
	}
	want := []Severity{SeverityCritical, SeverityWarning, SeverityInfo, SeverityCritical}
	for i, sev := range want {
		if alerts[i].Severity != sev {
			t.Errorf("alert[%d] = %s, want %s (%q)", i, alerts[i].Severity, sev, alerts[i].Text)
		}
	}
}

func TestTableToCSV(t *testing.T) {
	t.Parallel()

	content := `| Name | Value |
|------|-------|
| cpu | 93% |
| disk | "full" |`

	csv := TableToCSV(content)
	lines := strings.Split(csv, "\n")
	// Header + 2 data rows; the separator row is dropped.
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), csv)
	}
	assert.Equal(t, `"Name","Value"`, lines[0])
	assert.Equal(t, `"cpu","93%"`, lines[1])
	// Every cell quoted, embedded quotes doubled.
	assert.Equal(t, `"disk","""full"""`, lines[2])
}

func TestExport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		artifact *Artifact
		wantName string
		wantBody string
	}{
		{
			name:     "json pretty printed",
			artifact: &Artifact{ID: "tool-1", Type: TypeJSON, Title: "probe", Content: `{"ok":true}`},
			wantName: "probe.json",
			wantBody: "{\n  \"ok\": true\n}",
		},
		{
			name:     "yaml passthrough",
			artifact: &Artifact{ID: "tool-2", Type: TypeYAML, Title: "deploy config", Content: "replicas: 3\n"},
			wantName: "deploy-config.yaml",
			wantBody: "replicas: 3\n",
		},
		{
			name:     "default text",
			artifact: &Artifact{ID: "tool-3", Type: TypeMarkdown, Content: "# notes"},
			wantName: "tool-3.txt",
			wantBody: "# notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, data := Export(tt.artifact, nil)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantBody, string(data))
		})
	}
}

func TestExtractChart(t *testing.T) {
	t.Parallel()

	tagged := `[CHART]{"type":"bar","labels":["a"],"datasets":[{"label":"s","data":[1]}]}[/CHART]`
	chart, ok := ExtractChart(tagged, nil)
	if !ok {
		t.Fatal("expected chart from tagged content")
	}
	assert.Equal(t, "bar", chart.Type)

	bare := `{"type":"line","labels":[],"datasets":[]}`
	chart, ok = ExtractChart(bare, nil)
	if !ok {
		t.Fatal("expected chart from bare JSON")
	}
	assert.Equal(t, "line", chart.Type)
}

package stream

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collectEvents(t *testing.T, body string) []Event {
	t.Helper()
	var events []Event
	for ev, err := range Events(context.Background(), strings.NewReader(body), nil) {
		if err != nil {
			t.Fatalf("read error: %v", err)
		}
		events = append(events, ev)
	}
	return events
}

func TestEvents_FullStream(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		`data: {"type":"session","session_id":"s-1"}`,
		``,
		`data: {"type":"chunk","content":"Hello "}`,
		``,
		`data: {"type":"artifact","artifact":{"id":"tool-9","type":"table","title":"Pods","content":"| a |"}}`,
		``,
		`data: {"type":"tools_used","content":["kubectl_logs","promql_query"]}`,
		``,
		`data: {"type":"done","tool_calls":[{"name":"kubectl_logs"}]}`,
		``,
	}, "\n")

	events := collectEvents(t, body)
	if len(events) != 5 {
		t.Fatalf("events = %d, want 5", len(events))
	}

	assert.Equal(t, EventSession, events[0].Type)
	assert.Equal(t, "s-1", events[0].SessionID)

	assert.Equal(t, EventChunk, events[1].Type)
	assert.Equal(t, "Hello ", events[1].Text())

	if assert.NotNil(t, events[2].Artifact) {
		assert.Equal(t, "tool-9", events[2].Artifact.ID)
	}

	assert.Equal(t, []string{"kubectl_logs", "promql_query"}, events[3].Tools())

	assert.Equal(t, EventDone, events[4].Type)
	if assert.Len(t, events[4].ToolCalls, 1) {
		assert.Equal(t, "kubectl_logs", events[4].ToolCalls[0].Name)
	}
}

func TestEvents_MalformedLinesSkipped(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		`data: {"type":"chunk","content":"a"}`,
		`not an sse line`,
		`data: {broken json`,
		`: keep-alive comment`,
		`data: {"type":"chunk","content":"b"}`,
	}, "\n")

	events := collectEvents(t, body)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (malformed units skipped, stream not aborted)", len(events))
	}
	assert.Equal(t, "a", events[0].Text())
	assert.Equal(t, "b", events[1].Text())
}

func TestEvents_YieldStopEndsIteration(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("data: {\"type\":\"chunk\",\"content\":\"x\"}\n", 10)
	count := 0
	for range Events(context.Background(), strings.NewReader(body), nil) {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestEvents_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := "data: {\"type\":\"chunk\",\"content\":\"x\"}\n"
	count := 0
	for _, err := range Events(ctx, strings.NewReader(body), nil) {
		if err != nil {
			continue
		}
		count++
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 after cancellation", count)
	}
}

func TestEventText_UnquotedFallback(t *testing.T) {
	t.Parallel()

	ev := Event{Content: []byte("plain words")}
	assert.Equal(t, "plain words", ev.Text())
}

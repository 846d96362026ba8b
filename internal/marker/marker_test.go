package marker

import (
	"strings"
	"testing"
)

func TestExtract_NoMarkers(t *testing.T) {
	t.Parallel()

	input := "plain prose with [brackets] and [not a tag"
	res := Extract(input)

	if len(res.Spans) != 0 {
		t.Fatalf("spans = %d, want 0", len(res.Spans))
	}
	if res.Residual != input {
		t.Errorf("residual = %q, want input verbatim", res.Residual)
	}
	if res.Held != "" {
		t.Errorf("held = %q, want empty", res.Held)
	}
}

func TestExtract_SingleSpan(t *testing.T) {
	t.Parallel()

	input := `before [ARTIFACT]{"id":"tool-1","content":"x"}[/ARTIFACT] after`
	res := Extract(input)

	if len(res.Spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(res.Spans))
	}
	span := res.Spans[0]
	if span.Kind != KindArtifact {
		t.Errorf("kind = %q, want ARTIFACT", span.Kind)
	}
	if span.Payload != `{"id":"tool-1","content":"x"}` {
		t.Errorf("payload = %q", span.Payload)
	}
	if res.Residual != "before  after" {
		t.Errorf("residual = %q, want %q", res.Residual, "before  after")
	}
	if got := input[span.Start:span.End]; got != span.Raw {
		t.Errorf("offsets do not cover raw match: %q vs %q", got, span.Raw)
	}
}

func TestExtract_MultipleKindsInOrder(t *testing.T) {
	t.Parallel()

	input := "a [PROGRESS]p1[/PROGRESS] b [REASONING]r[/REASONING] c [SUGGESTIONS][\"x\"][/SUGGESTIONS]"
	res := Extract(input)

	if len(res.Spans) != 3 {
		t.Fatalf("spans = %d, want 3", len(res.Spans))
	}
	wantKinds := []Kind{KindProgress, KindReasoning, KindSuggestions}
	for i, k := range wantKinds {
		if res.Spans[i].Kind != k {
			t.Errorf("span[%d].Kind = %q, want %q", i, res.Spans[i].Kind, k)
		}
	}
	if res.Residual != "a  b  c " {
		t.Errorf("residual = %q, want %q", res.Residual, "a  b  c ")
	}
}

func TestExtract_HeldTail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantResidual string
		wantHeld     string
	}{
		{
			name:         "unclosed open tag",
			input:        "abc [CMD_CARD] server: s",
			wantResidual: "abc ",
			wantHeld:     "[CMD_CARD] server: s",
		},
		{
			name:         "partial open tag at tail",
			input:        "Hello [ARTIF",
			wantResidual: "Hello ",
			wantHeld:     "[ARTIF",
		},
		{
			name:         "lone bracket at tail",
			input:        "Hello [",
			wantResidual: "Hello ",
			wantHeld:     "[",
		},
		{
			name:         "partial close tag at tail",
			input:        "x [/ARTIFA",
			wantResidual: "x ",
			wantHeld:     "[/ARTIFA",
		},
		{
			name:         "bracket word is prose",
			input:        "array[3] access",
			wantResidual: "array[3] access",
			wantHeld:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Extract(tt.input)
			if res.Residual != tt.wantResidual {
				t.Errorf("residual = %q, want %q", res.Residual, tt.wantResidual)
			}
			if res.Held != tt.wantHeld {
				t.Errorf("held = %q, want %q", res.Held, tt.wantHeld)
			}
			if len(res.Spans) != 0 {
				t.Errorf("spans = %d, want 0", len(res.Spans))
			}
		})
	}
}

func TestExtract_SpanBeforeHeldTail(t *testing.T) {
	t.Parallel()

	input := "a [PROGRESS]done[/PROGRESS] b [ARTIFACT]{\"content"
	res := Extract(input)

	if len(res.Spans) != 1 || res.Spans[0].Kind != KindProgress {
		t.Fatalf("spans = %+v, want one PROGRESS span", res.Spans)
	}
	if res.Residual != "a  b " {
		t.Errorf("residual = %q, want %q", res.Residual, "a  b ")
	}
	if !strings.HasPrefix(res.Held, "[ARTIFACT]") {
		t.Errorf("held = %q, want suffix from opening tag", res.Held)
	}
}

func TestExtract_OffsetsStableAcrossGrowth(t *testing.T) {
	t.Parallel()

	// The streaming decoder keys emit-once bookkeeping on span start
	// offsets, which relies on offsets not moving as the buffer grows.
	prefix := "x [FILE_OPEN]{\"path\":\"a.go\"}[/FILE_OPEN] y"
	first := Extract(prefix)
	second := Extract(prefix + " more prose [PROGRESS]p[/PROGRESS]")

	if len(first.Spans) != 1 || len(second.Spans) != 2 {
		t.Fatalf("spans = %d then %d, want 1 then 2", len(first.Spans), len(second.Spans))
	}
	if first.Spans[0].Start != second.Spans[0].Start {
		t.Errorf("span start moved: %d -> %d", first.Spans[0].Start, second.Spans[0].Start)
	}
}

func FuzzExtract(f *testing.F) {
	f.Add("plain text")
	f.Add("[ARTIFACT]{\"content\":\"x\"}[/ARTIFACT]")
	f.Add("a [CMD_CARD] server: s")
	f.Add("[[[]]][/ARTIFACT][CHART]")
	f.Add("tail [SUGGEST")

	f.Fuzz(func(t *testing.T, input string) {
		res := Extract(input)

		// Every input byte lands in exactly one of residual, a span, or
		// the held tail.
		total := len(res.Residual) + len(res.Held)
		for _, span := range res.Spans {
			total += span.End - span.Start
			if span.Raw != input[span.Start:span.End] {
				t.Fatalf("span raw does not match offsets: %q", span.Raw)
			}
		}
		if total != len(input) {
			t.Fatalf("byte conservation violated: %d != %d", total, len(input))
		}

		// The held tail is always a suffix of the input.
		if res.Held != "" && !strings.HasSuffix(input, res.Held) {
			t.Fatalf("held %q is not a suffix of input", res.Held)
		}
	})
}

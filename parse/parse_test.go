package parse

import (
	"testing"

	"github.com/cliplens/cliplens/errors"
)

type payload struct {
	Summary    string   `json:"summary"`
	KeyMoments []string `json:"keyMoments"`
}

func TestExtractDirectJSON(t *testing.T) {
	var got payload
	err := Extract(`{"summary":"x","keyMoments":[]}`, "summarize", &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "x" {
		t.Errorf("expected summary 'x', got '%s'", got.Summary)
	}
}

func TestExtractFencedBlock(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"summary\":\"x\",\"keyMoments\":[]}\n```"

	var got payload
	if err := Extract(raw, "summarize", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "x" {
		t.Errorf("expected summary 'x', got '%s'", got.Summary)
	}
	if got.KeyMoments == nil || len(got.KeyMoments) != 0 {
		t.Errorf("expected empty keyMoments, got %v", got.KeyMoments)
	}
}

func TestExtractPlainFence(t *testing.T) {
	raw := "```\n{\"summary\":\"fenced\"}\n```"

	var got payload
	if err := Extract(raw, "summarize", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "fenced" {
		t.Errorf("expected summary 'fenced', got '%s'", got.Summary)
	}
}

func TestExtractBraceFallback(t *testing.T) {
	var got map[string]int
	if err := Extract(`blah {"a":1} blah`, "ctx", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["a"] != 1 {
		t.Errorf("expected a=1, got %v", got)
	}
}

func TestExtractFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json at all", "not json at all"},
		{"empty", ""},
		{"whitespace", "   \n\t "},
		{"unbalanced braces", "oops } then {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := Extract(tt.raw, "ctx", &got)
			if err == nil {
				t.Fatal("expected parse error, got nil")
			}
			if !errors.IsParse(err) {
				t.Errorf("expected parse kind, got %v", errors.KindOf(err))
			}
		})
	}
}

func TestExtractPrefersFenceOverOuterBraces(t *testing.T) {
	// The prose contains stray braces; the fenced block is the payload.
	raw := "prelude {\n```json\n{\"summary\":\"inner\"}\n```\n}"

	var got payload
	if err := Extract(raw, "ctx", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "inner" {
		t.Errorf("expected summary 'inner', got '%s'", got.Summary)
	}
}

package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cliplens/cliplens/models"
)

const sampleTranscript = "[00:00] Hello world. [01:30] Goodbye."

func TestSummarizePrompt(t *testing.T) {
	b := NewBuilder(nil)
	lang := Lookup("es")

	p := b.Summarize(sampleTranscript, lang)

	for _, want := range []string{
		"Spanish", "(language code: es)",
		"[MM:SS]",
		"Do not invent",
		"keyMoments",
		sampleTranscript,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("summarize prompt missing %q", want)
		}
	}
}

func TestAnswerPrompt(t *testing.T) {
	b := NewBuilder(nil)

	p := b.Answer(sampleTranscript, DefaultLanguage, "What is said first?")

	if !strings.Contains(p, "What is said first?") {
		t.Error("answer prompt missing the question")
	}
	if !strings.Contains(p, "relatedSegments") {
		t.Error("answer prompt missing the response shape")
	}
	if !strings.Contains(p, "does not address it, state that clearly") {
		t.Error("answer prompt missing the no-answer instruction")
	}
}

func TestValidationPrompt(t *testing.T) {
	b := NewBuilder(nil)
	result := &models.AnalysisResult{
		Summary:    "A greeting and a farewell.",
		KeyMoments: []models.Highlight{{Timestamp: "00:00", Description: "Greeting"}},
	}

	p, err := b.Validation("original request text", result, sampleTranscript, DefaultLanguage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"original request text",
		"A greeting and a farewell.",
		"isValid",
		`"replace" | "remove" | "add"`,
		sampleTranscript,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("validation prompt missing %q", want)
		}
	}
}

func TestEmptyTranscriptDegrades(t *testing.T) {
	b := NewBuilder(nil)

	tests := []struct {
		name string
		p    string
	}{
		{"summarize", b.Summarize("  ", DefaultLanguage)},
		{"answer", b.Answer("", DefaultLanguage, "anything?")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.p, "transcript is unavailable") {
				t.Error("degraded prompt missing limitation explanation")
			}
			if !strings.Contains(tt.p, "English") {
				t.Error("degraded prompt missing output language")
			}
		})
	}
}

func TestGuidelinesAppended(t *testing.T) {
	b := NewBuilder([]string{"Prefer short sentences."})

	p := b.Summarize(sampleTranscript, DefaultLanguage)
	if !strings.Contains(p, "Prefer short sentences.") {
		t.Error("expected guideline in prompt")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ja", "Japanese"},
		{"", "English"},
		{"xx", "English"},
	}

	for _, tt := range tests {
		if got := Lookup(tt.code); got.Name != tt.want {
			t.Errorf("Lookup(%q).Name = %q, want %q", tt.code, got.Name, tt.want)
		}
	}
}

func TestLoadGuidelines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guidelines.yaml")
	content := "guidelines:\n  criteria:\n    - Keep the tone neutral.\n    - Avoid hype.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadGuidelines(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "Keep the tone neutral." {
		t.Errorf("unexpected guidelines: %v", got)
	}

	// Missing file is not an error.
	got, err = LoadGuidelines(filepath.Join(dir, "absent.yaml"))
	if err != nil || got != nil {
		t.Errorf("expected nil, nil for missing file, got %v, %v", got, err)
	}
}

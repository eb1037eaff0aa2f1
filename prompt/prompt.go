// Package prompt builds the three request kinds sent to the LLM: summarize,
// answer-question, and validate. Builders are pure; they read only the
// static language table and the configured style guidelines.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cliplens/cliplens/models"
)

type Builder struct {
	guidelines []string
}

func NewBuilder(guidelines []string) *Builder {
	return &Builder{guidelines: guidelines}
}

// commonRules are attached to every generation prompt. Every factual claim
// must carry a transcript timestamp and nothing may be invented.
func (b *Builder) commonRules(lang models.Language) string {
	rules := fmt.Sprintf(`STRICT RULES:
- Write ALL output in %s (language code: %s). Keep proper nouns and technical terms in their original form.
- Attach a timestamp in [MM:SS] format (or [HH:MM:SS] past one hour) to every factual claim, taken from the transcript annotations.
- Use ONLY information present in the transcript. Do not invent names, numbers, or events.
- If the transcript does not contain the information needed, say so explicitly instead of guessing.
- Respond with valid JSON only. No prose before or after the JSON object.`, lang.Name, lang.Code)

	if len(b.guidelines) > 0 {
		rules += "\n\nSTYLE GUIDELINES:\n- " + strings.Join(b.guidelines, "\n- ")
	}
	return rules
}

// Summarize builds the executive-summary prompt: ~100 words plus 3-5 key
// moments. An empty transcript still yields a well-formed request asking the
// model to explain the limitation.
func (b *Builder) Summarize(transcript string, lang models.Language) string {
	if strings.TrimSpace(transcript) == "" {
		return b.degraded("summary", lang)
	}

	return fmt.Sprintf(`You summarize YouTube video transcripts.

%s

TASK:
1. Write an executive summary of about 100 words covering the video's core argument and conclusions.
2. Pick the 3-5 most important moments, each with its transcript timestamp.

Respond in this JSON format:
{
  "summary": "executive summary, about 100 words",
  "keyMoments": [
    {"timestamp": "MM:SS", "description": "what happens at this moment"}
  ]
}

TRANSCRIPT:
%s`, b.commonRules(lang), transcript)
}

// Answer builds the question-answering prompt for a user-supplied question.
func (b *Builder) Answer(transcript string, lang models.Language, question string) string {
	if strings.TrimSpace(transcript) == "" {
		return b.degraded("answer", lang)
	}

	return fmt.Sprintf(`You answer questions about a YouTube video using only its transcript.

%s

QUESTION:
%s

TASK:
Answer the question directly. If the transcript does not address it, state that clearly. List the timestamp or timestamp range of every transcript segment the answer draws on.

Respond in this JSON format:
{
  "text": "direct answer to the question",
  "relatedSegments": ["MM:SS", "MM:SS-MM:SS"]
}

TRANSCRIPT:
%s`, b.commonRules(lang), question, transcript)
}

// Validation builds the fact-checking prompt: given the prompt that produced
// a result, the result itself, and the source transcript, the model reports
// per-field discrepancies with structured corrections.
func (b *Builder) Validation(originalPrompt string, result *models.AnalysisResult, transcript string, lang models.Language) (string, error) {
	serialized, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize result for validation: %w", err)
	}

	if strings.TrimSpace(transcript) == "" {
		return b.degraded("validation", lang), nil
	}

	return fmt.Sprintf(`You fact-check an AI-generated video analysis against the source transcript.

%s

The analysis below was produced by the following request:
--- ORIGINAL REQUEST ---
%s
--- END ORIGINAL REQUEST ---

ANALYSIS UNDER REVIEW:
%s

TASK:
Compare every claim and timestamp in the analysis against the transcript. Report each discrepancy as an issue. For keyMoments issues, include the zero-based "index" of the affected entry. Each issue carries a correction: "replace" with a corrected value, "remove" to delete the entry, or "add" (keyMoments only, no index) to append a missing moment. The correction value for "summary" is the corrected text; for "keyMoments" it is {"timestamp": "MM:SS", "description": "..."}; for "customAnswer" it is {"text": "...", "relatedSegments": [...]}.

Respond in this JSON format:
{
  "isValid": true,
  "issues": [
    {
      "field": "summary" | "keyMoments" | "customAnswer",
      "index": 0,
      "issueType": "factual_error" | "wrong_timestamp" | "fabrication" | "omission",
      "description": "what is wrong",
      "correction": {"action": "replace" | "remove" | "add", "value": ...}
    }
  ]
}
Set "isValid" to true and "issues" to [] when the analysis is accurate.

TRANSCRIPT:
%s`, b.commonRules(lang), originalPrompt, string(serialized), transcript), nil
}

// degraded produces a well-formed request for the empty-transcript case
// instead of silently sending an empty context.
func (b *Builder) degraded(kind string, lang models.Language) string {
	var shape string
	switch kind {
	case "answer":
		shape = `{"text": "explanation that no transcript is available", "relatedSegments": []}`
	case "validation":
		shape = `{"isValid": true, "issues": []}`
	default:
		shape = `{"summary": "explanation that no transcript is available", "keyMoments": []}`
	}

	return fmt.Sprintf(`No transcript could be extracted for this video.

Explain briefly, in %s (language code: %s), that the video's transcript is unavailable and no content-based analysis is possible. Do not invent any video content.

Respond in this JSON format:
%s`, lang.Name, lang.Code, shape)
}

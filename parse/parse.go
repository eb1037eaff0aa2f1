// Package parse recovers JSON payloads from raw LLM responses. Models are
// instructed to answer with pure JSON but routinely wrap it in prose or code
// fences, so decoding falls back through progressively looser extraction
// before giving up.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cliplens/cliplens/errors"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Extract decodes the JSON payload inside raw into v. The context tag names
// the call site so parse failures in logs can be traced to the prompt that
// produced them.
//
// Attempt order:
//  1. the raw text as-is
//  2. the contents of the first fenced code block
//  3. the substring between the first '{' and the last '}'
//
// A failure is always surfaced as a parse error carrying the raw text; a
// silently returned zero value would poison the whole pipeline.
func Extract(raw, context string, v interface{}) error {
	const op = "parse.Extract"

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return errors.Parse(op, nil, fmt.Sprintf("%s: empty response", context))
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	if match := fencedBlock.FindStringSubmatch(trimmed); match != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), v); err == nil {
			return nil
		}
	}

	if candidate, ok := braceSpan(trimmed); ok {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}

	return errors.Parse(op, fmt.Errorf("raw response: %s", snippet(trimmed)),
		fmt.Sprintf("%s: no valid JSON found in response", context))
}

// braceSpan returns the substring between the first '{' and the last '}'.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// snippet bounds the raw text kept on a parse error so diagnostics stay
// readable for very long responses.
func snippet(s string) string {
	const max = 2000
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Package transcript defines the contract with the transcript source and
// helpers for the inline-timestamp text form the analysis pipeline consumes.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MinAnalyzableLength is the practical floor below which a transcript does
// not contain enough material to analyze.
const MinAnalyzableLength = 50

// Sentinel failures the source must make distinguishable.
var (
	ErrUnavailable      = errors.New("no transcript available")
	ErrExtractionFailed = errors.New("transcript extraction failed")
	ErrTooShort         = errors.New("transcript too short to analyze")
)

// Source supplies the full transcript for a video as a single annotated
// text blob with timestamps inline as "[MM:SS] text". Implementations live
// outside this module; failures must wrap one of the sentinel errors above.
type Source interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Segment is the structured alternative some sources return.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

var inlineTimestamp = regexp.MustCompile(`\[(\d{1,2}:)?\d{1,2}:\d{2}\]`)

// Validate checks that text is usable as analysis input.
func Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrUnavailable
	}
	if len(trimmed) < MinAnalyzableLength {
		return fmt.Errorf("%w: %d characters", ErrTooShort, len(trimmed))
	}
	return nil
}

// HasInlineTimestamps reports whether the blob carries [MM:SS] annotations.
func HasInlineTimestamps(text string) bool {
	return inlineTimestamp.MatchString(text)
}

// Render converts structured segments into the annotated blob form.
func Render(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(fmt.Sprintf("[%s] %s", FormatTimestamp(seg.Start), text))
	}
	return b.String()
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS past an hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

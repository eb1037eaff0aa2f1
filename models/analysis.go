package models

import (
	"strings"
	"time"
)

// Highlight is a single key moment in the video. Timestamp is MM:SS or
// HH:MM:SS. Both fields must be non-empty; entries that lose either field
// during correction are dropped whole, never left partially filled.
type Highlight struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// IsComplete reports whether the highlight satisfies the non-empty invariant.
func (h Highlight) IsComplete() bool {
	return strings.TrimSpace(h.Timestamp) != "" && strings.TrimSpace(h.Description) != ""
}

// UserAnswerResult carries the answer to a user-supplied question together
// with the transcript segments it is grounded on. Each segment is a
// timestamp or a timestamp range string.
type UserAnswerResult struct {
	Text            string   `json:"text"`
	RelatedSegments []string `json:"relatedSegments"`
}

// AnalysisResult is the output of one analysis run for a (video, question)
// pair. It is mutated in place during correction and immutable once cached.
type AnalysisResult struct {
	Summary      string            `json:"summary"`
	KeyMoments   []Highlight       `json:"keyMoments"`
	CustomAnswer *UserAnswerResult `json:"customAnswer,omitempty"`
}

// Clone returns a deep copy so that correction never aliases the original.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := &AnalysisResult{
		Summary:    r.Summary,
		KeyMoments: make([]Highlight, len(r.KeyMoments)),
	}
	copy(out.KeyMoments, r.KeyMoments)
	if r.CustomAnswer != nil {
		answer := UserAnswerResult{
			Text:            r.CustomAnswer.Text,
			RelatedSegments: make([]string, len(r.CustomAnswer.RelatedSegments)),
		}
		copy(answer.RelatedSegments, r.CustomAnswer.RelatedSegments)
		out.CustomAnswer = &answer
	}
	return out
}

// FilterKeyMoments drops highlights with a blank timestamp or description.
// This is the single point that guarantees the key-moment invariant after
// corrections have been applied.
func (r *AnalysisResult) FilterKeyMoments() {
	filtered := r.KeyMoments[:0]
	for _, h := range r.KeyMoments {
		if h.IsComplete() {
			filtered = append(filtered, h)
		}
	}
	r.KeyMoments = filtered
}

// Language identifies the output language requested for an analysis.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// AnalysisState tracks where a result is in its lifecycle.
type AnalysisState string

const (
	StatePreliminary AnalysisState = "preliminary"
	StateFinal       AnalysisState = "final"
)

// AnalysisRecord is the cached form of a finished analysis.
type AnalysisRecord struct {
	VideoID   string          `json:"video_id"`
	Result    *AnalysisResult `json:"result"`
	Meta      AnalysisMeta    `json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AnalysisMeta records how a cached result was produced.
type AnalysisMeta struct {
	Provider     Provider `json:"provider"`
	Model        string   `json:"model"`
	LanguageCode string   `json:"language_code"`
	Question     string   `json:"question,omitempty"`
	Validated    bool     `json:"validated"`
}

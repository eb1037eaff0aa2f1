package models

import (
	"encoding/json"
	"strings"
)

// IssueField names the part of an AnalysisResult a validation issue targets.
type IssueField string

const (
	FieldSummary      IssueField = "summary"
	FieldKeyMoments   IssueField = "keyMoments"
	FieldCustomAnswer IssueField = "customAnswer"
)

// CorrectionAction is what the correction engine should do with the value.
type CorrectionAction string

const (
	ActionReplace CorrectionAction = "replace"
	ActionRemove  CorrectionAction = "remove"
	ActionAdd     CorrectionAction = "add"
)

// Correction carries the patch for one issue. The value shape depends on the
// issue's field, so it is kept raw and decoded per field at the point of use
// rather than probed as untyped properties.
type Correction struct {
	Action CorrectionAction `json:"action"`
	Value  json.RawMessage  `json:"value,omitempty"`
}

// SummaryText decodes the correction value for a summary issue. Models send
// either a bare string or an object carrying text/description.
func (c Correction) SummaryText() (string, bool) {
	if len(c.Value) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(c.Value, &s); err == nil {
		return s, strings.TrimSpace(s) != ""
	}
	var obj struct {
		Text        string `json:"text"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(c.Value, &obj); err != nil {
		return "", false
	}
	if strings.TrimSpace(obj.Text) != "" {
		return obj.Text, true
	}
	return obj.Description, strings.TrimSpace(obj.Description) != ""
}

// Moment decodes the correction value for a keyMoments issue. The timestamp
// may be absent on replace; callers preserve the prior one in that case.
func (c Correction) Moment() (Highlight, bool) {
	if len(c.Value) == 0 {
		return Highlight{}, false
	}
	var obj struct {
		Timestamp   string `json:"timestamp"`
		Description string `json:"description"`
		Text        string `json:"text"`
	}
	if err := json.Unmarshal(c.Value, &obj); err != nil {
		return Highlight{}, false
	}
	desc := obj.Description
	if strings.TrimSpace(desc) == "" {
		desc = obj.Text
	}
	return Highlight{Timestamp: obj.Timestamp, Description: desc}, true
}

// Answer decodes the correction value for a customAnswer issue, accepting a
// bare string or a full answer object.
func (c Correction) Answer() (*UserAnswerResult, bool) {
	if len(c.Value) == 0 {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(c.Value, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil, false
		}
		return &UserAnswerResult{Text: s}, true
	}
	var answer UserAnswerResult
	if err := json.Unmarshal(c.Value, &answer); err != nil {
		return nil, false
	}
	return &answer, strings.TrimSpace(answer.Text) != ""
}

// ValidationIssue is one discrepancy found by the validation pass. Index is
// only meaningful for keyMoments issues.
type ValidationIssue struct {
	Field       IssueField `json:"field"`
	Index       *int       `json:"index,omitempty"`
	IssueType   string     `json:"issueType"`
	Description string     `json:"description"`
	Correction  Correction `json:"correction"`
}

// ValidationResult is the parsed output of one validation call. It lives
// only long enough to be applied by the correction engine.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Issues  []ValidationIssue `json:"issues"`
}

// Package review fact-checks a generated analysis against its source
// transcript and applies the resulting corrections.
package review

import (
	"context"
	"sort"

	"github.com/cliplens/cliplens/llm"
	"github.com/cliplens/cliplens/models"
	"github.com/cliplens/cliplens/parse"
	"github.com/cliplens/cliplens/prompt"

	"github.com/sirupsen/logrus"
)

type Engine struct {
	prompts *prompt.Builder
	logger  *logrus.Logger
}

func NewEngine(prompts *prompt.Builder) *Engine {
	return &Engine{
		prompts: prompts,
		logger:  logrus.StandardLogger(),
	}
}

// ValidateInput carries the context a validation call needs: the result
// under test, the prompt that produced it, and the source transcript.
type ValidateInput struct {
	Result         *models.AnalysisResult
	Transcript     string
	OriginalPrompt string
	Language       models.Language
}

// Validate issues one validation call and parses the discrepancy list.
// Validation is fail-open: any failure (build, network, parse) is treated
// as "no issues found", because a correctness-improving step must never
// regress availability.
func (e *Engine) Validate(ctx context.Context, client llm.Client, in ValidateInput) models.ValidationResult {
	const op = "ReviewEngine.Validate"
	logger := e.logger.WithField("operation", op)

	valid := models.ValidationResult{IsValid: true}

	promptText, err := e.prompts.Validation(in.OriginalPrompt, in.Result, in.Transcript, in.Language)
	if err != nil {
		logger.WithError(err).Warn("Failed to build validation prompt, treating result as valid")
		return valid
	}

	raw, err := client.Complete(ctx, promptText, llm.Options{})
	if err != nil {
		logger.WithError(err).Warn("Validation call failed, treating result as valid")
		return valid
	}

	var result models.ValidationResult
	if err := parse.Extract(raw, "validation", &result); err != nil {
		logger.WithError(err).Warn("Validation response unparseable, treating result as valid")
		return valid
	}

	logger.WithFields(logrus.Fields{
		"is_valid": result.IsValid,
		"issues":   len(result.Issues),
	}).Debug("Validation completed")

	return result
}

// ApplyCorrections returns a corrected deep copy of result; the input is
// never mutated. Issues are applied field by field in lexicographic order,
// and keyMoments removals run highest index first so earlier indices stay
// valid while entries are deleted. A final pass drops any key moment left
// with a blank timestamp or description.
func ApplyCorrections(result *models.AnalysisResult, issues []models.ValidationIssue) *models.AnalysisResult {
	corrected := result.Clone()
	if len(issues) == 0 {
		corrected.FilterKeyMoments()
		return corrected
	}

	ordered := make([]models.ValidationIssue, len(issues))
	copy(ordered, issues)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		if a.Field == models.FieldKeyMoments {
			aRemove := a.Correction.Action == models.ActionRemove
			bRemove := b.Correction.Action == models.ActionRemove
			if aRemove != bRemove {
				return aRemove
			}
			if aRemove && bRemove {
				return issueIndex(a) > issueIndex(b)
			}
		}
		return false
	})

	for _, issue := range ordered {
		switch issue.Field {
		case models.FieldSummary:
			applySummary(corrected, issue)
		case models.FieldKeyMoments:
			applyKeyMoment(corrected, issue)
		case models.FieldCustomAnswer:
			applyCustomAnswer(corrected, issue)
		}
	}

	corrected.FilterKeyMoments()
	return corrected
}

func issueIndex(issue models.ValidationIssue) int {
	if issue.Index == nil {
		return -1
	}
	return *issue.Index
}

func applySummary(result *models.AnalysisResult, issue models.ValidationIssue) {
	if issue.Correction.Action != models.ActionReplace {
		return
	}
	if text, ok := issue.Correction.SummaryText(); ok {
		result.Summary = text
	}
}

func applyKeyMoment(result *models.AnalysisResult, issue models.ValidationIssue) {
	switch issue.Correction.Action {
	case models.ActionRemove:
		i := issueIndex(issue)
		if i < 0 || i >= len(result.KeyMoments) {
			return
		}
		result.KeyMoments = append(result.KeyMoments[:i], result.KeyMoments[i+1:]...)

	case models.ActionReplace:
		i := issueIndex(issue)
		if i < 0 || i >= len(result.KeyMoments) {
			return
		}
		moment, ok := issue.Correction.Moment()
		if !ok {
			return
		}
		if moment.Timestamp == "" {
			moment.Timestamp = result.KeyMoments[i].Timestamp
		}
		result.KeyMoments[i] = moment

	case models.ActionAdd:
		if moment, ok := issue.Correction.Moment(); ok {
			result.KeyMoments = append(result.KeyMoments, moment)
		}
	}
}

func applyCustomAnswer(result *models.AnalysisResult, issue models.ValidationIssue) {
	switch issue.Correction.Action {
	case models.ActionRemove:
		result.CustomAnswer = nil
	case models.ActionReplace, models.ActionAdd:
		if answer, ok := issue.Correction.Answer(); ok {
			result.CustomAnswer = answer
		}
	}
}

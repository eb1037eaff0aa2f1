package analysis

import (
	"context"
	"time"

	"github.com/cliplens/cliplens/models"
)

// Service drives the generate -> validate -> correct pipeline.
type Service interface {
	// Summarize runs the fast generation path and returns the preliminary
	// result. Validation and correction continue in the background; the
	// corrected (or, on validation failure, unchanged) result supersedes
	// the preliminary one in the cache. Starting a new Summarize
	// invalidates the background work of any in-flight previous request.
	Summarize(ctx context.Context, req Request) (*models.AnalysisResult, error)

	// Get returns the cached final analysis for a video, if any.
	Get(ctx context.Context, videoID string) (*models.AnalysisRecord, error)

	Delete(ctx context.Context, videoID string) error
	List(ctx context.Context) ([]*models.AnalysisRecord, error)
	Clear(ctx context.Context) error
}

// Request is one summarization request.
type Request struct {
	VideoID     string
	Transcript  string
	Credentials models.Credentials
	Language    models.Language
	Question    string
	Model       string
}

// Archiver optionally copies final analyses to long-term storage.
type Archiver interface {
	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error
}

type Config struct {
	// CallTimeout bounds each individual provider call.
	CallTimeout time.Duration
	// MaxAttempts is the total attempt ceiling per call, first try included.
	MaxAttempts int
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	// ImproveTimeout bounds the whole background validation pass.
	ImproveTimeout time.Duration

	Temperature float64
	MaxTokens   int
}

// Defaults applied by NewService for zero-valued fields.
const (
	DefaultCallTimeout    = 45 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultImproveTimeout = 2 * time.Minute
)

func (c Config) withDefaults() Config {
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.ImproveTimeout <= 0 {
		c.ImproveTimeout = DefaultImproveTimeout
	}
	return c
}

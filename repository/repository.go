package repository

import (
	"context"

	"github.com/cliplens/cliplens/models"
)

// AnalysisRepository caches finished analyses keyed by video ID. Caching is
// an optimization, never a correctness requirement: implementations degrade
// read failures to a miss and let callers treat write failures as loggable
// no-ops.
type AnalysisRepository interface {
	Get(ctx context.Context, videoID string) (*models.AnalysisRecord, error)
	Put(ctx context.Context, rec *models.AnalysisRecord) error
	Delete(ctx context.Context, videoID string) error
	List(ctx context.Context) ([]*models.AnalysisRecord, error)
	Clear(ctx context.Context) error
}

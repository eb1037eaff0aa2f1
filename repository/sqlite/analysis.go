package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Repository is the sqlite-backed analysis cache. Every failure path
// degrades to a cache miss; the pipeline never depends on the cache working.
type Repository struct {
	db     *sql.DB
	stmts  *PreparedStatements
	logger *logrus.Logger
}

func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	stmts := &PreparedStatements{}
	if err := stmts.Prepare(ctx, db); err != nil {
		return nil, err
	}
	return &Repository{
		db:     db,
		stmts:  stmts,
		logger: logrus.StandardLogger(),
	}, nil
}

func (r *Repository) Close() error {
	return r.stmts.Close()
}

func (r *Repository) Get(ctx context.Context, videoID string) (*models.AnalysisRecord, error) {
	const op = "SQLiteRepository.Get"

	rec := &models.AnalysisRecord{}
	var resultJSON, provider, question string

	err := r.stmts.get.QueryRowContext(ctx, videoID).Scan(
		&rec.VideoID,
		&resultJSON,
		&provider,
		&rec.Meta.Model,
		&rec.Meta.LanguageCode,
		&question,
		&rec.Meta.Validated,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Analysis not found")
	}
	if err != nil {
		// Storage trouble is a miss, not a failure.
		r.logger.WithError(err).WithField("video_id", videoID).Warn("Cache read failed")
		return nil, errors.NotFound(op, err, "Analysis not found")
	}

	result := &models.AnalysisResult{}
	if err := json.Unmarshal([]byte(resultJSON), result); err != nil {
		r.logger.WithError(err).WithField("video_id", videoID).Warn("Cached result is corrupt")
		return nil, errors.NotFound(op, pkgerrors.Wrap(err, "decode cached result"), "Analysis not found")
	}

	rec.Result = result
	rec.Meta.Provider = models.Provider(provider)
	rec.Meta.Question = question
	return rec, nil
}

func (r *Repository) Put(ctx context.Context, rec *models.AnalysisRecord) error {
	const op = "SQLiteRepository.Put"

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return errors.Internal(op, pkgerrors.Wrap(err, "encode result"), "Failed to encode analysis")
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := time.Now()

	for i := 0; i < 3; i++ { // Simple retry logic for locked databases
		err = r.put(ctx, rec, string(resultJSON), createdAt, updatedAt)
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return errors.Internal(op, err, "Failed to save analysis")
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return errors.Internal(op, err, "Failed to save analysis after retries")
}

func (r *Repository) put(ctx context.Context, rec *models.AnalysisRecord, resultJSON string, createdAt, updatedAt time.Time) error {
	_, err := r.stmts.upsert.ExecContext(ctx,
		rec.VideoID,
		resultJSON,
		string(rec.Meta.Provider),
		rec.Meta.Model,
		rec.Meta.LanguageCode,
		rec.Meta.Question,
		rec.Meta.Validated,
		createdAt,
		updatedAt,
	)
	return err
}

func (r *Repository) Delete(ctx context.Context, videoID string) error {
	const op = "SQLiteRepository.Delete"

	if _, err := r.stmts.delete.ExecContext(ctx, videoID); err != nil {
		return errors.Internal(op, err, "Failed to delete analysis")
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]*models.AnalysisRecord, error) {
	const op = "SQLiteRepository.List"

	rows, err := r.stmts.list.QueryContext(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("Cache list failed")
		return nil, nil
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		rec := &models.AnalysisRecord{}
		var resultJSON, provider, question string

		if err := rows.Scan(
			&rec.VideoID,
			&resultJSON,
			&provider,
			&rec.Meta.Model,
			&rec.Meta.LanguageCode,
			&question,
			&rec.Meta.Validated,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			r.logger.WithError(err).Warn("Skipping unreadable cache row")
			continue
		}

		result := &models.AnalysisResult{}
		if err := json.Unmarshal([]byte(resultJSON), result); err != nil {
			r.logger.WithError(err).WithField("video_id", rec.VideoID).Warn("Skipping corrupt cache row")
			continue
		}

		rec.Result = result
		rec.Meta.Provider = models.Provider(provider)
		rec.Meta.Question = question
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Warn("Cache list terminated early")
	}
	return records, nil
}

func (r *Repository) Clear(ctx context.Context) error {
	const op = "SQLiteRepository.Clear"

	if _, err := r.stmts.clear.ExecContext(ctx); err != nil {
		return errors.Internal(op, err, "Failed to clear analyses")
	}
	return nil
}

func isLockError(err error) bool {
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "busy")
}

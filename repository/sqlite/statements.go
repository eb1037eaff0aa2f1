package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cliplens/cliplens/errors"
)

const (
	upsertQuery = `
        INSERT INTO analyses (
            video_id, result, provider, model, language_code,
            question, validated, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            result = excluded.result,
            provider = excluded.provider,
            model = excluded.model,
            language_code = excluded.language_code,
            question = excluded.question,
            validated = excluded.validated,
            updated_at = excluded.updated_at
    `

	getQuery = `
        SELECT video_id, result, provider, model, language_code,
               question, validated, created_at, updated_at
        FROM analyses WHERE video_id = ?
    `

	listQuery = `
        SELECT video_id, result, provider, model, language_code,
               question, validated, created_at, updated_at
        FROM analyses ORDER BY updated_at DESC
    `

	deleteQuery = `
        DELETE FROM analyses WHERE video_id = ?
    `

	clearQuery = `
        DELETE FROM analyses
    `
)

type PreparedStatements struct {
	upsert *sql.Stmt
	get    *sql.Stmt
	list   *sql.Stmt
	delete *sql.Stmt
	clear  *sql.Stmt
}

func (stmts *PreparedStatements) Prepare(ctx context.Context, db *sql.DB) error {
	const op = "PreparedStatements.Prepare"

	var err error

	if stmts.upsert, err = db.PrepareContext(ctx, upsertQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare upsert statement")
	}

	if stmts.get, err = db.PrepareContext(ctx, getQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare get statement")
	}

	if stmts.list, err = db.PrepareContext(ctx, listQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare list statement")
	}

	if stmts.delete, err = db.PrepareContext(ctx, deleteQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare delete statement")
	}

	if stmts.clear, err = db.PrepareContext(ctx, clearQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare clear statement")
	}

	return nil
}

func (stmts *PreparedStatements) Close() error {
	var errs []error

	statements := [...]*sql.Stmt{
		stmts.upsert,
		stmts.get,
		stmts.list,
		stmts.delete,
		stmts.clear,
	}

	for _, stmt := range statements {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close prepared statements: %v", errs)
	}

	return nil
}

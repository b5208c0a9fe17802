package follows

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/sqlerr"
)

type PostgresRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// Insert never aborts the surrounding transaction on a duplicate pair.
func (r *PostgresRepository) Insert(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query :=
		`INSERT INTO follows (follower_id, followee_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, followerID, followeeID, r.now())
	if err != nil {
		return false, mapWriteError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

	res, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, followerID, followeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func mapWriteError(err error) error {
	if _, ok := sqlerr.UniqueViolation(err); ok {
		return common.ErrAlreadyExists
	}
	if sqlerr.ForeignKeyViolation(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

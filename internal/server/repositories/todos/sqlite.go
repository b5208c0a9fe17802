package todos

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (title, description, completed, created_at) VALUES (?, ?, ?, ?)`,
		todo.Title, todo.Description, todo.Completed, dbx.ToMillis(todo.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	todo.ID = id
	return todo, nil
}

func (r *SQLiteRepository) List(ctx context.Context, skip, limit int) ([]*models.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, completed, created_at FROM todos ORDER BY id LIMIT ? OFFSET ?`,
		limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Todo, 0, limit)
	for rows.Next() {
		t := &models.Todo{}
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.CreatedAt = dbx.FromMillis(createdAt)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

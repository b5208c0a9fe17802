// Package todos stores todo items.
package todos

import (
	"context"

	"github.com/dmitrijs2005/conduit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	// List returns up to limit items ordered by id, skipping the first skip.
	List(ctx context.Context, skip, limit int) ([]*models.Todo, error)
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
)

const (
	DefaultTodoLimit = 10
	MaxTodoLimit     = 100
	maxTitleLength   = 255
)

type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m, now: time.Now}
}

func (s *TodoService) Create(ctx context.Context, title, description string) (*models.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title is longer than %d characters", common.ErrValidation, maxTitleLength)
	}

	return dbx.Transact(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Todo, error) {
		return s.repomanager.Todos(tx).Create(ctx, &models.Todo{
			Title:       title,
			Description: description,
			CreatedAt:   s.now().UTC(),
		})
	})
}

// List pages through todos. limit is capped at MaxTodoLimit.
func (s *TodoService) List(ctx context.Context, skip, limit int) ([]*models.Todo, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must not be negative", common.ErrValidation)
	}
	limit = min(limit, MaxTodoLimit)
	return s.repomanager.Todos(s.db).List(ctx, skip, limit)
}

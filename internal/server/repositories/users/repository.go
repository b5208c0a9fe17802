// Package users stores user accounts.
//
// Usernames are matched byte-exact and emails case-insensitively; both are
// unique. Unique violations are reported as common.ErrDuplicateUsername or
// common.ErrDuplicateEmail and missing rows as common.ErrorNotFound.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/sqlerr"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// mapWriteError turns unique violations into the matching duplicate error.
func mapWriteError(err error) error {
	if constraint, ok := sqlerr.UniqueViolation(err); ok {
		switch {
		case strings.Contains(constraint, "email"):
			return common.ErrDuplicateEmail
		case strings.Contains(constraint, "username"):
			return common.ErrDuplicateUsername
		default:
			return fmt.Errorf("%w: %s", common.ErrAlreadyExists, constraint)
		}
	}
	return fmt.Errorf("db error: %w", err)
}

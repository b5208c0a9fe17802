// Package services implements the server use cases on top of the
// repositories. Every mutating operation runs in one transaction.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/dmitrijs2005/conduit/internal/server/metrics"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/users"
)

const (
	maxUsernameLength = 50
	maxEmailLength    = 100
)

// TokenIssuer mints access tokens for a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates an account and returns it with a fresh token.
// Returns common.ErrDuplicateEmail or common.ErrDuplicateUsername when the
// email (any case) or the username (exact) is taken.
func (s *UserService) Register(ctx context.Context, reg models.Registration) (*models.User, string, error) {
	if err := validateUsername(reg.Username); err != nil {
		return nil, "", err
	}
	if err := validateEmail(reg.Email); err != nil {
		return nil, "", err
	}
	if reg.Password == "" {
		return nil, "", fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if err := validateImage(reg.Image); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		Bio:          reg.Bio,
		Image:        reg.Image,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := repo.GetByEmail(ctx, reg.Email); err == nil {
			return common.ErrDuplicateEmail
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		if _, err := findByUsername(ctx, repo, reg.Username); err == nil {
			return common.ErrDuplicateUsername
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns the user with a fresh token.
// An unknown email yields common.ErrUserNotFound and a wrong password
// common.ErrBadCredential. Legacy password hashes are upgraded on success.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.RecordAuthAttempt("login", metrics.OutcomeNotFound)
			return nil, "", common.ErrUserNotFound
		}
		metrics.RecordAuthAttempt("login", metrics.OutcomeError)
		return nil, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.RecordAuthAttempt("login", metrics.OutcomeBadPassword)
		s.logger.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, "", common.ErrBadCredential
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	metrics.RecordAuthAttempt("login", metrics.OutcomeSuccess)
	return user, token, nil
}

// upgradeHash replaces a legacy hash. Failures are logged, the login
// still succeeds.
func (s *UserService) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		return
	}

	upgraded := *user
	upgraded.PasswordHash = hash
	upgraded.UpdatedAt = s.now().UTC()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).Update(ctx, &upgraded)
	})
	if err != nil {
		s.logger.Warn(ctx, "password rehash not stored", "user_id", user.ID, "error", err)
		return
	}

	*user = upgraded
	s.logger.Info(ctx, "password hash upgraded", "user_id", user.ID)
}

// Update applies the non-nil fields of upd to the actor's account and
// returns the stored result with a fresh token.
func (s *UserService) Update(ctx context.Context, actor *models.User, upd models.UserUpdate) (*models.User, string, error) {
	if upd.Username != nil {
		if err := validateUsername(*upd.Username); err != nil {
			return nil, "", err
		}
	}
	if upd.Email != nil {
		if err := validateEmail(*upd.Email); err != nil {
			return nil, "", err
		}
	}

	if err := validateImage(upd.Image); err != nil {
		return nil, "", err
	}

	var hash string
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, "", fmt.Errorf("%w: password must not be empty", common.ErrValidation)
		}
		h, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, "", fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	user, err := dbx.Transact(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		current, err := repo.GetByID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrUserNotFound
			}
			return nil, err
		}

		if upd.Username != nil {
			other, err := findByUsername(ctx, repo, *upd.Username)
			if err == nil && other.ID != current.ID {
				return nil, common.ErrDuplicateUsername
			}
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return nil, err
			}
			current.Username = *upd.Username
		}

		if upd.Email != nil {
			other, err := repo.GetByEmail(ctx, *upd.Email)
			if err == nil && other.ID != current.ID {
				return nil, common.ErrDuplicateEmail
			}
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return nil, err
			}
			current.Email = *upd.Email
		}

		if upd.Password != nil {
			current.PasswordHash = hash
		}
		if upd.Bio != nil {
			current.Bio = upd.Bio
		}
		if upd.Image != nil {
			current.Image = upd.Image
		}
		current.UpdatedAt = s.now().UTC()

		if err := repo.Update(ctx, current); err != nil {
			return nil, err
		}
		return current, nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetByID returns common.ErrUserNotFound for unknown ids.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername matches the username byte-exact.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := findByUsername(ctx, s.repomanager.Users(s.db), username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail matches the email case-insensitively.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// IssueToken mints a fresh token for an already authenticated user.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	return s.tokens.Issue(user.ID)
}

// findByUsername re-checks the adapter's answer in Go, so a store whose
// collation folds case can never resolve the wrong account.
func findByUsername(ctx context.Context, repo users.Repository, username string) (*models.User, error) {
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Username != username {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func validateUsername(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return fmt.Errorf("%w: username is longer than %d characters", common.ErrValidation, maxUsernameLength)
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: email is longer than %d characters", common.ErrValidation, maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q is not a valid email address", common.ErrValidation, email)
	}
	return nil
}

// validateImage accepts nil or an absolute http(s) URL.
func validateImage(image *string) error {
	if image == nil {
		return nil
	}
	u, err := url.Parse(*image)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: image must be an http or https URL", common.ErrValidation)
	}
	return nil
}

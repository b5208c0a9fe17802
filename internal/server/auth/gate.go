package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/models"
)

// TokenValidator turns a raw token into the id of its subject.
type TokenValidator interface {
	Validate(token string) (int64, error)
}

// UserResolver loads a user by id. It returns common.ErrUserNotFound when
// the user does not exist.
type UserResolver interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Gate authenticates requests from the value of their Authorization header.
type Gate struct {
	tokens TokenValidator
	users  UserResolver
	logger logging.Logger
}

// NewGate creates a Gate.
func NewGate(tokens TokenValidator, users UserResolver, logger logging.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, logger: logger}
}

// ParseAuthorization splits an Authorization header value into its scheme
// and credential. The scheme must be one of common.AcceptedAuthSchemes
// (case-insensitive) and the credential must not be empty.
func ParseAuthorization(header string) (scheme, credential string, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "", common.ErrMissingCredential
	}

	scheme, credential, _ = strings.Cut(header, " ")
	credential = strings.TrimSpace(credential)

	if !slices.Contains(common.AcceptedAuthSchemes, strings.ToLower(scheme)) || credential == "" {
		return scheme, "", common.ErrMalformedCredential
	}
	return scheme, credential, nil
}

// Authenticate resolves the user behind an Authorization header value.
//
// A missing header yields common.ErrMissingCredential and an unparseable one
// common.ErrMalformedCredential. A token that fails validation yields an
// error wrapping both common.ErrInvalidCredential and the token failure
// kind. A valid token whose subject no longer exists yields
// common.ErrUnknownSubject.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.User, error) {
	_, credential, err := ParseAuthorization(header)
	if err != nil {
		return nil, err
	}

	id, err := g.tokens.Validate(credential)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			g.logger.Debug(ctx, "access token expired")
		} else {
			g.logger.Warn(ctx, "access token rejected", "error", err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidCredential, err)
	}

	user, err := g.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			g.logger.Warn(ctx, "token subject does not exist", "user_id", id)
			return nil, fmt.Errorf("%w: user %d", common.ErrUnknownSubject, id)
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}

	return user, nil
}

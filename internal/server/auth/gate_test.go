package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	users map[int64]*models.User
	err   error
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

func newTestGate(t *testing.T) (*Gate, *TokenService, *stubUsers) {
	t.Helper()
	tokens, err := NewTokenService([]byte("gate-secret"), "HS256", time.Hour)
	require.NoError(t, err)
	users := &stubUsers{users: map[int64]*models.User{
		1: {ID: 1, Username: "alice", Email: "alice@example.com"},
	}}
	return NewGate(tokens, users, logging.NewDiscardLogger()), tokens, users
}

func TestParseAuthorization(t *testing.T) {
	tests := []struct {
		header     string
		scheme     string
		credential string
		err        error
	}{
		{"Bearer abc", "Bearer", "abc", nil},
		{"bearer abc", "bearer", "abc", nil},
		{"Token abc", "Token", "abc", nil},
		{"TOKEN abc", "TOKEN", "abc", nil},
		{"  Bearer   abc  ", "Bearer", "abc", nil},
		{"", "", "", common.ErrMissingCredential},
		{"   ", "", "", common.ErrMissingCredential},
		{"Basic abc", "", "", common.ErrMalformedCredential},
		{"Bearer", "", "", common.ErrMalformedCredential},
		{"Bearer ", "", "", common.ErrMalformedCredential},
		{"abc", "", "", common.ErrMalformedCredential},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			scheme, cred, err := ParseAuthorization(tt.header)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, cred)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scheme, scheme)
			assert.Equal(t, tt.credential, cred)
		})
	}
}

func TestGate_Authenticate(t *testing.T) {
	ctx := context.Background()
	gate, tokens, _ := newTestGate(t)

	valid, err := tokens.Issue(1)
	require.NoError(t, err)

	t.Run("resolved with either scheme", func(t *testing.T) {
		for _, scheme := range []string{"Bearer", "Token", "bearer", "tOkEn"} {
			u, err := gate.Authenticate(ctx, scheme+" "+valid)
			require.NoError(t, err, scheme)
			assert.Equal(t, "alice", u.Username)
		}
	})

	t.Run("missing header is forbidden", func(t *testing.T) {
		_, err := gate.Authenticate(ctx, "")
		assert.True(t, common.IsForbidden(err))
		assert.False(t, common.IsUnauthorized(err))
	})

	t.Run("wrong scheme is forbidden", func(t *testing.T) {
		_, err := gate.Authenticate(ctx, "Basic "+valid)
		assert.ErrorIs(t, err, common.ErrMalformedCredential)
		assert.True(t, common.IsForbidden(err))
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		_, err := gate.Authenticate(ctx, "Bearer not.a.jwt")
		assert.True(t, common.IsUnauthorized(err))
		assert.False(t, common.IsForbidden(err))
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("expired token keeps its kind", func(t *testing.T) {
		old, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(1)
		require.NoError(t, err)

		_, err = gate.Authenticate(ctx, "Bearer "+old)
		assert.ErrorIs(t, err, common.ErrInvalidCredential)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("unknown subject is unauthorized", func(t *testing.T) {
		ghost, err := tokens.Issue(99)
		require.NoError(t, err)

		_, err = gate.Authenticate(ctx, "Token "+ghost)
		assert.ErrorIs(t, err, common.ErrUnknownSubject)
		assert.True(t, common.IsUnauthorized(err))
	})
}

func TestGate_StoreFailure(t *testing.T) {
	gate, tokens, users := newTestGate(t)
	users.err = errors.New("db down")

	tok, err := tokens.Issue(1)
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), "Bearer "+tok)
	require.Error(t, err)
	assert.False(t, common.IsUnauthorized(err))
	assert.False(t, common.IsForbidden(err))
}

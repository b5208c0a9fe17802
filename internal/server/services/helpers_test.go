package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repotest"
	"github.com/stretchr/testify/require"
)

type env struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	hasher *auth.Argon2idHasher
	tokens *auth.TokenService
	users  *UserService
	social *SocialService
	todos  *TodoService
}

func cheapHasher() *auth.Argon2idHasher {
	return &auth.Argon2idHasher{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := repotest.NewSQLite(t)
	rm := repomanager.NewSQLiteRepositoryManager()
	tokens, err := auth.NewTokenService([]byte("service-secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)

	hasher := cheapHasher()
	logger := logging.NewDiscardLogger()

	return &env{
		db:     db,
		rm:     rm,
		hasher: hasher,
		tokens: tokens,
		users:  NewUserService(db, rm, hasher, tokens, logger),
		social: NewSocialService(db, rm, logger),
		todos:  NewTodoService(db, rm),
	}
}

func (e *env) register(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	u, _, err := e.users.Register(context.Background(), models.Registration{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func strp(s string) *string { return &s }

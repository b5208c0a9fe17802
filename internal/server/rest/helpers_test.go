package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/dmitrijs2005/conduit/internal/server/config"
	"github.com/dmitrijs2005/conduit/internal/server/metrics"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/conduit/internal/server/services"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	srv    *Server
	tokens *auth.TokenService
	users  *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := repotest.NewSQLite(t)
	rm := repomanager.NewSQLiteRepositoryManager()
	logger := logging.NewDiscardLogger()

	tokens, err := auth.NewTokenService([]byte("rest-secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)

	hasher := &auth.Argon2idHasher{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	users := services.NewUserService(db, rm, hasher, tokens, logger)

	reg := prometheus.NewRegistry()
	metrics.RegisterMetrics(reg)

	srv := NewServer("127.0.0.1:0", logger, Deps{
		Users:    users,
		Social:   services.NewSocialService(db, rm, logger),
		Todos:    services.NewTodoService(db, rm),
		Avatars:  services.NewAvatarService(&config.Config{}),
		Gate:     auth.NewGate(tokens, users, logger),
		DB:       db,
		Gatherer: reg,
	})

	return &testServer{srv: srv, tokens: tokens, users: users}
}

// do sends a request through the fiber app. authorization is sent verbatim
// when not empty.
func (ts *testServer) do(t *testing.T, method, path string, body any, authorization string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}

	resp, err := ts.srv.app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second, FailOnTimeout: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// register signs a user up and returns the issued token.
func (ts *testServer) register(t *testing.T, username, email, password string) string {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/api/users", userPayload{"username": username, "email": email, "password": password}.wrap(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[userResponse](t, resp).User.Token
}

type userPayload map[string]any

func (p userPayload) wrap() map[string]any {
	return map[string]any{"user": map[string]any(p)}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func bearer(token string) string { return "Bearer " + token }

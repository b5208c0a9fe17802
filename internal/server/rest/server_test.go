package rest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginFollowFlow(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "alice", "a@x.io", "pw1")
	ts.register(t, "bob", "b@x.io", "pw2")

	resp := ts.do(t, http.MethodPost, "/api/users/login", userPayload{"email": "A@X.IO", "password": "pw1"}.wrap(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[userResponse](t, resp)
	assert.Equal(t, "alice", login.User.Username)
	assert.Equal(t, "a@x.io", login.User.Email)
	require.NotEmpty(t, login.User.Token)
	token := login.User.Token

	for i := 0; i < 2; i++ {
		resp = ts.do(t, http.MethodPost, "/api/profiles/bob/follow", nil, bearer(token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		p := decode[profileResponse](t, resp)
		assert.Equal(t, "bob", p.Profile.Username)
		assert.True(t, p.Profile.Following)
	}

	resp = ts.do(t, http.MethodGet, "/api/profiles/bob", nil, "Token "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[profileResponse](t, resp).Profile.Following)

	resp = ts.do(t, http.MethodGet, "/api/profiles/bob", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[profileResponse](t, resp).Profile.Following)

	for i := 0; i < 2; i++ {
		resp = ts.do(t, http.MethodDelete, "/api/profiles/bob/follow", nil, bearer(token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decode[profileResponse](t, resp).Profile.Following)
	}

	resp = ts.do(t, http.MethodGet, "/api/profiles/bob", nil, bearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[profileResponse](t, resp).Profile.Following)
}

func TestRegister_Errors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "a@x.io", "pw1")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantDetail string
	}{
		{
			name:       "duplicate email in another case",
			body:       userPayload{"username": "carol", "email": "A@x.IO", "password": "pw"}.wrap(),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Email already registered",
		},
		{
			name:       "duplicate username",
			body:       userPayload{"username": "alice", "email": "c@x.io", "password": "pw"}.wrap(),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Username already in use",
		},
		{
			name:       "invalid email",
			body:       userPayload{"username": "carol", "email": "nope", "password": "pw"}.wrap(),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "image is not a url",
			body:       userPayload{"username": "carol", "email": "c@x.io", "password": "pw", "image": "picture"}.wrap(),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing user object",
			body:       map[string]any{"username": "carol"},
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "Request body must be a user object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, "/api/users", tt.body, "")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[errorResponse](t, resp)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body.Detail)
			} else {
				assert.NotEmpty(t, body.Detail)
			}
		})
	}

	t.Run("username differing in case is a new account", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/users", userPayload{"username": "Alice", "email": "d@x.io", "password": "pw"}.wrap(), "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLogin_Errors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "a@x.io", "pw1")

	resp := ts.do(t, http.MethodPost, "/api/users/login", userPayload{"email": "z@x.io", "password": "pw1"}.wrap(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", decode[errorResponse](t, resp).Detail)

	resp = ts.do(t, http.MethodPost, "/api/users/login", userPayload{"email": "a@x.io", "password": "wrong"}.wrap(), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Incorrect email or password", decode[errorResponse](t, resp).Detail)

	resp = ts.do(t, http.MethodPost, "/api/users/login", userPayload{"email": "a@x.io"}.wrap(), "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLogin_TrailingSlash(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "a@x.io", "pw1")

	resp := ts.do(t, http.MethodPost, "/api/users/login/", userPayload{"email": "a@x.io", "password": "pw1"}.wrap(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "a@x.io", "pw1")

	unknown, err := ts.tokens.Issue(9999)
	require.NoError(t, err)

	expired, err := ts.tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name          string
		header        string
		wantStatus    int
		wantDetail    string
		wantChallenge string
	}{
		{name: "no header", header: "", wantStatus: http.StatusForbidden, wantDetail: "Invalid authorization format"},
		{name: "unsupported scheme", header: "Basic " + token, wantStatus: http.StatusForbidden, wantDetail: "Invalid authorization format"},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusForbidden, wantDetail: "Invalid authorization format"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantDetail: "Could not validate credentials", wantChallenge: "Bearer"},
		{name: "token scheme echoed", header: "token not-a-jwt", wantStatus: http.StatusUnauthorized, wantDetail: "Could not validate credentials", wantChallenge: "Token"},
		{name: "expired token", header: bearer(expired), wantStatus: http.StatusUnauthorized, wantChallenge: "Bearer"},
		{name: "unknown subject", header: bearer(unknown), wantStatus: http.StatusUnauthorized, wantChallenge: "Bearer"},
		{name: "valid lower-case scheme", header: "bearer " + token, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, "/api/user", nil, tt.header)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantChallenge, resp.Header.Get("WWW-Authenticate"))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "alice", decode[userResponse](t, resp).User.Username)
				return
			}
			body := decode[errorResponse](t, resp)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body.Detail)
			}
		})
	}
}

func TestFollow_Errors(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "a@x.io", "pw1")
	ts.register(t, "bob", "b@x.io", "pw2")

	t.Run("unknown target", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/profiles/nobody/follow", nil, bearer(token))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "User not found", decode[errorResponse](t, resp).Detail)
	})

	t.Run("username is case-sensitive", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/profiles/Bob/follow", nil, bearer(token))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unfollow unknown target", func(t *testing.T) {
		resp := ts.do(t, http.MethodDelete, "/api/profiles/nobody/follow", nil, bearer(token))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("requires credentials", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/profiles/bob/follow", nil, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("escaped username", func(t *testing.T) {
		ts.register(t, "jo hn", "j@x.io", "pw3")
		resp := ts.do(t, http.MethodPost, "/api/profiles/"+url.PathEscape("jo hn")+"/follow", nil, bearer(token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "jo hn", decode[profileResponse](t, resp).Profile.Username)
	})
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "a@x.io", "pw1")
	ts.register(t, "bob", "b@x.io", "pw2")

	resp := ts.do(t, http.MethodPut, "/api/users", map[string]any{"user": map[string]any{
		"bio":      "hello",
		"email":    "alice@x.io",
		"password": "pw-new",
		"image":    nil,
	}}, bearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[userResponse](t, resp)
	assert.Equal(t, "alice", updated.User.Username)
	assert.Equal(t, "alice@x.io", updated.User.Email)
	require.NotNil(t, updated.User.Bio)
	assert.Equal(t, "hello", *updated.User.Bio)
	assert.Nil(t, updated.User.Image)
	assert.NotEmpty(t, updated.User.Token)

	resp = ts.do(t, http.MethodPost, "/api/users/login", userPayload{"email": "alice@x.io", "password": "pw-new"}.wrap(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/api/users", userPayload{"username": "bob"}.wrap(), bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already in use.", decode[errorResponse](t, resp).Detail)

	resp = ts.do(t, http.MethodPut, "/api/users", userPayload{"email": "B@X.IO"}.wrap(), bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already in use.", decode[errorResponse](t, resp).Detail)

	resp = ts.do(t, http.MethodPut, "/api/users", userPayload{"username": "alice"}.wrap(), bearer(token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/api/users", userPayload{"bio": "x"}.wrap(), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAvatarUpload_StorageDisabled(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "a@x.io", "pw1")

	resp := ts.do(t, http.MethodPost, "/api/users/avatar", nil, bearer(token))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.NotEmpty(t, decode[errorResponse](t, resp).Detail)
}

func TestTodos(t *testing.T) {
	ts := newTestServer(t)

	for _, title := range []string{"one", "two", "three"} {
		resp := ts.do(t, http.MethodPost, "/todos", map[string]any{"title": title, "description": "d-" + title}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		todo := decode[todoBody](t, resp)
		assert.Positive(t, todo.ID)
		assert.Equal(t, title, todo.Title)
		assert.False(t, todo.Completed)
	}

	resp := ts.do(t, http.MethodGet, "/todos", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]todoBody](t, resp), 3)

	resp = ts.do(t, http.MethodGet, "/todos?skip=1&limit=1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[[]todoBody](t, resp)
	require.Len(t, page, 1)
	assert.Equal(t, "two", page[0].Title)

	resp = ts.do(t, http.MethodGet, "/todos?limit=abc", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/todos?skip=-1", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/todos", map[string]any{"title": "no description"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHealthzAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])

	resp = ts.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "conduit_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, decode[errorResponse](t, resp).Detail)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", logging.NewDiscardLogger(), Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewServer("127.0.0.1:99999", logging.NewDiscardLogger(), Deps{})

	err := srv.Run(context.Background())
	assert.Error(t, err)
}

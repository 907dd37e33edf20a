package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/service"
)

// newTestAuthHandler builds an AuthHandler over the shared test env.
// The GitHub provider never talks to GitHub in these tests — the paths under
// test (state checks, cookie handling, /api/me) all run before or after the
// code exchange.
func newTestAuthHandler(t *testing.T, env *testEnv) *AuthHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := auth.NewGitHubProvider("test-client-id", "test-client-secret", "http://localhost:8080/auth/github/callback")
	authSvc := service.NewAuthService(env.db, env.tokens, auth.NewPasswordServiceForTest(4), logger)
	return NewAuthHandler(provider, authSvc, logger)
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandleGitHubLogin_RedirectsWithStateCookie(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)

	r := httptest.NewRequest(http.MethodGet, "/auth/github/login", nil)
	rec := httptest.NewRecorder()
	h.HandleGitHubLogin(rec, r)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	location := rec.Header().Get("Location")
	assert.Contains(t, location, "github.com/login/oauth/authorize")
	assert.Contains(t, location, "client_id=test-client-id")

	state := cookieByName(rec.Result().Cookies(), "oauth_state")
	require.NotNil(t, state, "login must set the CSRF state cookie")
	assert.NotEmpty(t, state.Value)
	assert.True(t, state.HttpOnly)
	// The redirect URL carries the same state the cookie holds.
	assert.Contains(t, location, "state="+state.Value)
}

func TestHandleGitHubCallback_MissingStateCookie(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)

	r := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=xyz", nil)
	rec := httptest.NewRecorder()
	h.HandleGitHubCallback(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGitHubCallback_StateMismatch(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)

	r := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=forged", nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "genuine"})
	rec := httptest.NewRecorder()
	h.HandleGitHubCallback(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGitHubCallback_UserDeniedAuthorization(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)

	r := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=ok&error=access_denied", nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "ok"})
	rec := httptest.NewRecorder()
	h.HandleGitHubCallback(rec, r)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?auth=denied", rec.Header().Get("Location"))

	// No session cookie on a denied flow, and the state cookie is cleared.
	assert.Nil(t, cookieByName(rec.Result().Cookies(), "token"))
	cleared := cookieByName(rec.Result().Cookies(), "oauth_state")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestHandleLogout_ClearsTokenCookie(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	token := cookieByName(rec.Result().Cookies(), "token")
	require.NotNil(t, token)
	assert.Equal(t, -1, token.MaxAge)
	assert.Empty(t, token.Value)
}

func TestHandleMe_ReturnsSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)
	alice, cookie := env.signIn(t, 1, "alice")

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.requireAuth(h.HandleMe).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var user model.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, alice.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestHandleMe_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	env.requireAuth(h.HandleMe).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleMe_MissingProfileIs404NotLoggedOut(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env)

	// A validly signed token whose subject has no user row.
	token, err := env.tokens.Generate("ghost-user-id")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	env.requireAuth(h.HandleMe).ServeHTTP(rec, r)

	// The session passed the middleware — the missing row is a 404.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

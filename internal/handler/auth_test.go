package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/auth"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/server"
	"github.com/sakif/prompt-market/internal/service"
)

// fakeGitHub implements auth.OAuthProvider without talking to GitHub.
type fakeGitHub struct {
	user    *auth.GitHubUser
	err     error
	gotCode string
}

func (f *fakeGitHub) AuthURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeGitHub) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	f.gotCode = code
	return f.user, f.err
}

func TestRegister(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/register", map[string]string{
		"username": "new_seller",
		"email":    "Seller@Example.com",
		"password": "hunter22",
	}, 0)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	res := decode[service.AuthResult](t, rec)
	assert.Equal(t, int64(4), res.User.ID)
	assert.Equal(t, "seller@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)

	c := cookie(rec, auth.TokenCookie)
	require.NotNil(t, c, "register sets the session cookie")
	assert.Equal(t, res.Token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Positive(t, c.MaxAge)

	// The returned token works on protected routes.
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rec = a.send(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new_seller", decode[model.User](t, rec).Username)
}

func TestRegister_Rejects(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name    string
		body    any
		kind    string
		message string
	}{
		{"broken json", `{"username":`, "validation_error", "Invalid request body"},
		{"username taken", map[string]string{"username": "sarah_chen", "email": "x@example.com", "password": "password123"}, "conflict", "Username already exists"},
		{"email taken", map[string]string{"username": "someone", "email": "alex@example.com", "password": "password123"}, "conflict", "Email already exists"},
		{"short password", map[string]string{"username": "someone", "email": "s@example.com", "password": "123"}, "validation_error", ""},
		{"bad email", map[string]string{"username": "someone", "email": "nope", "password": "password123"}, "validation_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/api/register", tt.body, 0)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, tt.kind, e.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, e.Message)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/login", map[string]string{
		"username": "sarah_chen",
		"password": "password123",
	}, 0)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[service.AuthResult](t, rec)
	assert.Equal(t, sarah, res.User.ID)
	require.NotNil(t, cookie(rec, auth.TokenCookie))

	// The cookie alone authenticates a browser request.
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: res.Token})
	rec = a.send(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sarah_chen", decode[model.User](t, rec).Username)

	for _, creds := range []map[string]string{
		{"username": "sarah_chen", "password": "wrong-password"},
		{"username": "ghost", "password": "password123"},
	} {
		rec := a.do(http.MethodPost, "/api/login", creds, 0)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid username or password", decodeError(t, rec).Message)
	}

	rec = a.do(http.MethodPost, "/api/login", map[string]string{"username": "sarah_chen"}, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/logout", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())

	c := cookie(rec, auth.TokenCookie)
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)
}

func TestGitHubLogin_NotConfigured(t *testing.T) {
	a := newAPI(t)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/auth/github/login", nil, 0).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/auth/github/callback", nil, 0).Code)
}

// githubFlow performs the login redirect and returns the state the server
// stored in its cookie.
func githubFlow(t *testing.T, a *api) string {
	t.Helper()

	rec := a.do(http.MethodGet, "/auth/github/login", nil, 0)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	state := cookie(rec, "oauth_state")
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state.Value, loc.Query().Get("state"))
	return state.Value
}

func callback(a *api, state, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?"+query, nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: state})
	return a.send(req)
}

func TestGitHubCallback(t *testing.T) {
	gh := &fakeGitHub{user: &auth.GitHubUser{ID: 9001, Login: "octocat", Email: "octo@github.com"}}
	a := newAPI(t, server.WithOAuthProvider(gh))

	state := githubFlow(t, a)
	rec := callback(a, state, "code=abc&state="+state)

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "abc", gh.gotCode)

	session := cookie(rec, auth.TokenCookie)
	require.NotNil(t, session)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(session)
	rec = a.send(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "octocat", decode[model.User](t, rec).Username)
}

func TestGitHubCallback_Failures(t *testing.T) {
	gh := &fakeGitHub{err: errors.New("github is down")}
	a := newAPI(t, server.WithOAuthProvider(gh))

	t.Run("state mismatch", func(t *testing.T) {
		rec := callback(a, "expected", "code=abc&state=forged")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing state cookie", func(t *testing.T) {
		rec := a.do(http.MethodGet, "/auth/github/callback?code=abc&state=x", nil, 0)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("user denied", func(t *testing.T) {
		rec := callback(a, "s1", "error=access_denied&state=s1")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?auth=denied", rec.Header().Get("Location"))
	})

	t.Run("missing code", func(t *testing.T) {
		rec := callback(a, "s1", "state=s1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange fails", func(t *testing.T) {
		rec := callback(a, "s1", "code=abc&state=s1")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		e := decodeError(t, rec)
		assert.Equal(t, "An internal error occurred", e.Message)
		assert.NotContains(t, rec.Body.String(), "github is down")
	})
}

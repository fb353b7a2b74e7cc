package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sakif/prompt-market/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. With a plain string key, ANY
// package that knows the string can read or shadow the value. A package-private
// type means only this package can create the key.
type contextKey string

const userIDKey contextKey = "userID"

// TokenCookie is the HttpOnly cookie the browser client carries the JWT in.
const TokenCookie = "token"

// Authenticator turns a bearer token into the id of an existing user.
//
// The HTTP layer depends on this interface, not on TokenService, so tests and
// alternative identity providers can stand in for JWT verification.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// UserLookup is the slice of the user repository the authenticator needs.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TokenAuthenticator verifies the JWT and then checks that the subject still
// exists, so tokens of deleted users stop working before they expire.
type TokenAuthenticator struct {
	tokens *TokenService
	users  UserLookup
}

var _ Authenticator = (*TokenAuthenticator)(nil)

func NewTokenAuthenticator(tokens *TokenService, users UserLookup) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens, users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (int64, error) {
	userID, err := a.tokens.Validate(token)
	if err != nil {
		return 0, err
	}
	if _, err := a.users.GetByID(ctx, userID); err != nil {
		return 0, fmt.Errorf("auth: token subject %d: %w", userID, err)
	}
	return userID, nil
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the token, resolves it through the Authenticator and stores the
// user id in the request context.
//
//   - no token at all          → 401 Unauthorized
//   - token present but bad    → 403 Forbidden (expired, forged, unknown user)
//
// The split lets the client tell "please log in" from "your session is gone".
//
// MIDDLEWARE PATTERN IN GO:
// A middleware takes an http.Handler and returns a new http.Handler that wraps
// it. Chi applies them in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Access token required")
				return
			}

			userID, err := a.Authenticate(r.Context(), token)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth extracts the user identity if a valid token is present but
// never blocks the request.
//
// Used on public catalog routes: anonymous callers still read, signed-in
// callers additionally get isFavorited / inCart on every prompt.
func OptionalAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if userID, err := a.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns (0, false) if the request is anonymous.
//
//	userID, ok := auth.UserIDFromContext(r.Context())
//	if !ok {
//	    // anonymous user
//	}
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// tokenFromRequest prefers "Authorization: Bearer <jwt>" (API clients) and
// falls back to the "token" cookie set by login (browser clients).
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}

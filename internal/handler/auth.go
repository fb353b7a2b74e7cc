package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/auth"
	"github.com/sakif/prompt-market/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler manages accounts, sessions and the GitHub OAuth login flow.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister / HandleLogin → password accounts, respond {user, token}
//   - HandleLogout                 → clear the JWT cookie
//   - HandleMe                     → the currently signed-in user
//   - HandleGitHubLogin            → redirect the browser to GitHub
//   - HandleGitHubCallback         → exchange the code, sign the user in
//
// TWO WAYS TO CARRY THE TOKEN:
// Every successful sign-in both returns the JWT in the body (API clients put
// it in an Authorization header) and sets it as an HttpOnly cookie (browsers).
// The auth middleware accepts either.
type AuthHandler struct {
	accounts *service.AuthService
	github   auth.OAuthProvider // nil when GitHub sign-in is not configured
	tokenTTL time.Duration
	secure   bool
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secure marks the session cookie
// Secure; set it whenever the server sits behind HTTPS.
func NewAuthHandler(
	accounts *service.AuthService,
	github auth.OAuthProvider,
	tokenTTL time.Duration,
	secure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		github:   github,
		tokenTTL: tokenTTL,
		secure:   secure,
		logger:   logger,
	}
}

type registerRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Avatar   *string `json:"avatar"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister handles POST /api/register → 201 {user, token}.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, res)
}

// HandleLogin handles POST /api/login → 200 {user, token}.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, h.logger, apperror.ValidationFailed("username", "Username and password are required"))
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res)
}

// HandleLogout clears the JWT cookie.
//
// HTTP: POST /api/logout
//
// Since we're stateless (JWT), "logout" just means deleting the client-side
// cookie. The token stays valid until it expires; API clients that kept it
// in memory simply drop it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// HandleMe handles GET /api/user. The password hash never leaves the server:
// model.User tags it json:"-".
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.accounts.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// We generate a random state string and store it in a short-lived cookie.
// When GitHub calls back, HandleGitHubCallback verifies the state matches.
// This proves the callback was initiated by this server, not a CSRF attacker.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeError(w, r, h.logger, apperror.NotFoundMessage("GitHub sign-in is not configured"))
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. Find or create the marketplace account
//  4. Set the JWT cookie and redirect to the app
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeError(w, r, h.logger, apperror.NotFoundMessage("GitHub sign-in is not configured"))
		return
	}

	// --- Step 1: Validate CSRF state ---
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("auth callback: invalid state")
		writeError(w, r, h.logger, apperror.ValidationFailed("state", "Invalid OAuth state"))
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	// --- Step 2: Exchange code for GitHub user profile ---
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, r, h.logger, apperror.ValidationFailed("code", "Missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// --- Step 3: Find or create the account ---
	res, err := h.accounts.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// --- Step 4: Issue JWT cookie and go home ---
	h.setTokenCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setTokenCookie stores the JWT in an HttpOnly cookie that lives as long as
// the token itself.
//
// HttpOnly = JavaScript cannot read this cookie (XSS protection).
// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

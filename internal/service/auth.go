package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/auth"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// AuthService handles the authentication business logic:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// It never sets cookies or reads requests; that is the handler's job.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued JWT so the handler can set the
// cookie and respond in one step.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   *string
}

// Register creates a password account and signs the new user in.
//
// The username/email lookups produce the precise message for the common case.
// Two registrations racing for the same name still cannot both succeed: the
// store's unique constraints reject the loser with ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if !usernamePattern.MatchString(username) {
		return nil, apperror.ValidationFailed("username",
			"username must be 3-32 characters of letters, digits, '.', '_' or '-'")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperror.ValidationFailed("email", "email address is invalid")
	}
	if err := auth.CheckStrength(in.Password); err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	if taken, err := s.exists(ctx, s.users.GetByUsername, username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperror.Conflict("username", "Username already exists")
	}
	if taken, err := s.exists(ctx, s.users.GetByEmail, email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperror.Conflict("email", "Email already exists")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Avatar:       in.Avatar,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.issue(user)
}

// Login checks username and password. Unknown users and wrong passwords get
// the same message so the response does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	invalid := apperror.Unauthenticated("Invalid username or password")

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: loading user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login rejected", slog.String("username", user.Username))
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return s.issue(user)
}

// CurrentUser returns the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("User not found")
		}
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}
	return user, nil
}

// LoginWithGitHub signs in the account linked to a GitHub profile, creating it
// on first login.
//
// A new account takes the GitHub login as username and the profile email.
// When either is already used by another account, the username gets the
// GitHub id appended and the email falls back to GitHub's noreply address, so
// sign-in never fails on a name clash. Accounts created this way have no
// password.
func (s *AuthService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetByGitHubID(ctx, gh.ID)
	if err == nil {
		s.logger.Info("user authenticated via GitHub", slog.Int64("userID", user.ID))
		return s.issue(user)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up GitHub id %d: %w", gh.ID, err)
	}

	username := gh.Login
	if taken, err := s.exists(ctx, s.users.GetByUsername, username); err != nil {
		return nil, err
	} else if taken || !usernamePattern.MatchString(username) {
		username = fmt.Sprintf("%s-%d", gh.Login, gh.ID)
	}

	email := strings.ToLower(gh.Email)
	noreply := fmt.Sprintf("%d+%s@users.noreply.github.com", gh.ID, strings.ToLower(gh.Login))
	if email == "" {
		email = noreply
	} else if taken, err := s.exists(ctx, s.users.GetByEmail, email); err != nil {
		return nil, err
	} else if taken {
		email = noreply
	}

	githubID := gh.ID
	user = &model.User{
		Username: username,
		Email:    email,
		GitHubID: &githubID,
	}
	if gh.AvatarURL != "" {
		avatar := gh.AvatarURL
		user.Avatar = &avatar
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating GitHub user (githubID=%d): %w", gh.ID, err)
	}

	s.logger.Info("user registered via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) exists(ctx context.Context, get func(context.Context, string) (*model.User, error), key string) (bool, error) {
	_, err := get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperror.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("service/auth: looking up %q: %w", key, err)
	}
}

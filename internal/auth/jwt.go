// Package auth issues and verifies bearer tokens, hashes passwords and runs
// the GitHub sign-in flow.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /api/register or /api/login (or the GitHub callback) proves who the
//     caller is and receives a signed JWT
//  2. The client sends it back as "Authorization: Bearer <jwt>" or in the
//     HttpOnly "token" cookie
//  3. RequireAuth / OptionalAuth resolve it to a user id through an
//     Authenticator and put the id in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:    {"alg":"HS256","typ":"JWT"}
//	- Payload:   {"sub":"42","iss":"prompt-market","aud":["prompt-market-users"],"jti":"<uuid>","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "prompt-market"
	Audience = "prompt-market-users"

	// DefaultTTL matches the seven-day sessions the web client expects.
	DefaultTTL = 7 * 24 * time.Hour
)

// ErrTokenExpired lets callers tell an expired session from a forged one.
var ErrTokenExpired = errors.New("auth: token expired")

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. A ttl of zero selects DefaultTTL.
// The secret should be at least 32 bytes of random data in production:
//
//	JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is how long issued tokens stay valid; the cookie MaxAge follows it.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate signs a token for userID with the configured lifetime.
func (s *TokenService) Generate(userID int64) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to mint already-expired tokens.
//
// Every token gets a random jti (uuid v4) so two logins in the same second
// still produce distinct tokens.
func (s *TokenService) GenerateWithDuration(userID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer, audience and expiry, and
// returns the user id from the "sub" claim.
//
// ALGORITHM CONFUSION ATTACK:
// Without pinning the algorithm, a token claiming "alg":"none" might be
// accepted. jwt.WithValidMethods rejects anything but HS256.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	var c jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token has no valid subject")
	}
	return userID, nil
}

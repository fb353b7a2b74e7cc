package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// WHY BCRYPT?
// bcrypt is slow to compute and salts every hash, so equal passwords get
// different hashes and brute force is expensive. The salt and cost travel
// inside the hash string itself:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// Users created through GitHub sign-in have an empty hash. Verify always
// fails against it, so those accounts cannot log in with a password.

const (
	defaultCost = 12

	// bcrypt ignores everything past 72 bytes; longer input is rejected
	// instead of silently truncated.
	maxPasswordBytes = 72
	minPasswordChars = 6
)

// ErrInvalidCredentials is returned by Verify for a wrong password.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// PasswordService provides bcrypt hashing and verification. The cost is a
// field so tests can drop it to bcrypt.MinCost.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with the given cost.
// Other packages' tests pass bcrypt.MinCost (4). Never use it in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// CheckStrength reports whether plaintext is acceptable as a new password.
func CheckStrength(plaintext string) error {
	switch {
	case len([]rune(plaintext)) < minPasswordChars:
		return fmt.Errorf("password must be at least %d characters", minPasswordChars)
	case len(plaintext) > maxPasswordBytes:
		return fmt.Errorf("password must be %d bytes or fewer", maxPasswordBytes)
	}
	return nil
}

// Hash hashes plaintext with bcrypt. The result is stored as-is.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrInvalidCredentials
// when it does not. The comparison inside bcrypt is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if hash == "" {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

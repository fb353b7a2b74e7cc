package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

// =========================================================================
// Hash
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SaltIsRandom(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_LengthLimit(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() should reject a 73-byte password")
	}
	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("Hash() should accept a 72-byte password, got %v", err)
	}
}

// =========================================================================
// Verify
// =========================================================================

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name      string
		hash      string
		password  string
		wantErr   bool
		wantCreds bool // error must be ErrInvalidCredentials
	}{
		{"correct password", hash, "correct-horse-battery-staple", false, false},
		{"wrong password", hash, "the-wrong-password", true, true},
		{"empty password", hash, "", true, true},
		{"account without password", "", "anything", true, true},
		{"garbage hash", "not-a-valid-bcrypt-hash", "password", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantCreds && !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Verify() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	for _, password := range []string{"hello123", "p@$$w0rd!#%", "пароль-密码", "  spaced out  "} {
		t.Run(password, func(t *testing.T) {
			hash, err := ps.Hash(password)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", password, err)
			}
			if err := ps.Verify(hash, password); err != nil {
				t.Errorf("Verify() failed for %q: %v", password, err)
			}
		})
	}
}

func TestCheckStrength(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"12345", true},
		{"123456", false},
		{"пароль", false}, // six runes, twelve bytes
		{strings.Repeat("x", 72), false},
		{strings.Repeat("x", 73), true},
	}
	for _, tt := range tests {
		if err := CheckStrength(tt.password); (err != nil) != tt.wantErr {
			t.Errorf("CheckStrength(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

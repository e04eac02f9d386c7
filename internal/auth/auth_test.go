package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"deskbook/backend/internal/domain"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	user := domain.User{ID: uuid.MustParse("00000000-0000-0000-0000-000000000701"), Role: domain.RoleAdmin}

	tok, err := iss.Issue(user)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	caller, err := iss.Parse(tok.Value)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if caller.UserID != user.ID || !caller.IsAdmin() {
		t.Fatalf("caller = %+v", caller)
	}
}

func TestIssuer_RejectsBadTokens(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)
	other, _ := NewIssuer("other-secret", time.Hour)
	user := domain.User{ID: uuid.New(), Role: domain.RoleEmployee}

	foreign, _ := other.Issue(user)

	past := time.Now().Add(-2 * time.Hour)
	expiredIssuer, _ := NewIssuer("secret", time.Hour)
	expiredIssuer.now = func() time.Time { return past }
	expired, _ := expiredIssuer.Issue(user)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": "root",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	for name, raw := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign.Value,
		"expired":      expired.Value,
		"alg none":     none,
		"bad role":     badRole,
	} {
		if _, err := iss.Parse(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err = %v, want %v", name, err, ErrInvalidToken)
		}
	}
}

func TestNewIssuer_Validation(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewIssuer("s", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if err := h.Compare(hash, "hunter2"); err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if err := h.Compare(hash, "hunter3"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("err = %v, want %v", err, ErrPasswordMismatch)
	}
	if NewHasher(99).cost != bcrypt.DefaultCost {
		t.Fatalf("out of range cost not defaulted")
	}
}

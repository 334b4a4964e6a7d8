package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

func TestTokenIssuer_Disabled(t *testing.T) {
	issuer := NewTokenIssuer("", time.Hour)
	if issuer.Enabled() {
		t.Fatal("issuer without secret must be disabled")
	}
	tok, err := issuer.Issue(&domain.User{ID: "s1", Role: domain.RoleStudent})
	if err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q, %v", tok, err)
	}
	if _, err := issuer.Verify("anything"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issued := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	issuer.now = fixedClock(issued)

	tok, err := issuer.Issue(&domain.User{ID: "s1", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = fixedClock(issued.Add(2 * time.Minute))
	if _, err := issuer.Verify(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestTokenIssuer_RejectsForeignSecretAndAlg(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "s1", "role": "student", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other"))
	if _, err := issuer.Verify(foreign); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected foreign signature rejected, got %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "s1", "role": "student",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := issuer.Verify(none); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected alg=none rejected, got %v", err)
	}
}

func TestTokenIssuer_RejectsMalformedClaims(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "student", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if _, err := issuer.Verify(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected missing subject rejected, got %v", err)
	}
}

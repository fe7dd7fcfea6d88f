package auth

import (
	"testing"
	"time"

	"github.com/HasanDroid18/SAWA-Backend/internal/model"
)

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	if _, err := NewTokenIssuer(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}

	token, err := issuer.Issue(42, "user@example.com", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("Email = %q", claims.Email)
	}
	if claims.Role != model.RoleUser {
		t.Fatalf("Role = %q, want User", claims.Role)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("ExpiresAt is not set")
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != SessionTTL {
		t.Fatalf("token lifetime = %v, want %v", lifetime, SessionTTL)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := &TokenIssuer{secret: []byte("test-secret"), ttl: -time.Second}

	token, err := issuer.Issue(1, "user@example.com", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Fatalf("expired token must not verify")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	other, err := NewTokenIssuer("other-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}

	token, err := issuer.Issue(1, "user@example.com", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Fatalf("token signed with another secret must not verify")
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := issuer.Verify(tok); err == nil {
			t.Fatalf("malformed token %q must not verify", tok)
		}
	}
}

package auth

import (
	"testing"
	"time"

	"github.com/pactly/go-pact-backend/internal/domain"
)

func testUser() *domain.User {
	email := "ana@example.com"
	return &domain.User{ID: "u-1", Name: "Ana", Email: &email}
}

func TestSignAndParse_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "u-1" || claims.Name != "Ana" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Sign(testUser())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewManager("secret-b", time.Hour).Parse(token); err != ErrInvalidToken {
		t.Fatalf("foreign signature must be ErrInvalidToken, got %v", err)
	}
}

func TestParse_RejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)
	token, err := m.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := m.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expired token must be ErrInvalidToken, got %v", err)
	}
}

func TestParse_RejectsGarbage(t *testing.T) {
	m := NewManager("secret", time.Hour)
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Parse(tok); err != ErrInvalidToken {
			t.Fatalf("Parse(%q) must be ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestSign_NilEmailOmitted(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.Sign(&domain.User{ID: "u-2", Name: "Demo"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil || claims.Email != "" {
		t.Fatalf("demo user token: claims=%+v err=%v", claims, err)
	}
}

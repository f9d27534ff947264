package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-0123456789"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("user-1", "admin", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.UserID != "user-1" || id.Role != "admin" || id.Email != "admin@example.com" {
		t.Errorf("unexpected identity %+v", id)
	}
	if !id.IsAdmin() {
		t.Error("expected admin identity")
	}
}

func TestTokenIssuer_RejectsOtherSecret(t *testing.T) {
	token, err := NewTokenIssuer("another-secret-0123456789", time.Hour).Issue("user-1", "customer", "a@b.c")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = NewTokenIssuer(testSecret, time.Hour).Parse(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue("user-1", "customer", "a@b.c")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	if _, err := NewTokenIssuer(testSecret, time.Hour).Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("hash must not equal the password")
	}
	if !VerifyPassword(hash, "s3cret!") {
		t.Error("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password verified")
	}
}

func TestIdentityContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil identity on empty context")
	}

	ctx := WithIdentity(context.Background(), &Identity{UserID: "u1", Role: "customer"})
	id := FromContext(ctx)
	if id == nil || id.UserID != "u1" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.IsAdmin() {
		t.Error("customer reported as admin")
	}

	var nilID *Identity
	if nilID.IsAdmin() {
		t.Error("nil identity reported as admin")
	}
}

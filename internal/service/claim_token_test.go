package service

import (
	"errors"
	"testing"
	"time"

	"mirrorbrain/internal/domain"
)

func TestClaimTokenDisabled(t *testing.T) {
	svc := NewClaimTokenService("", time.Hour)

	if svc.Enabled() {
		t.Fatalf("expected service disabled without secret")
	}
	token, err := svc.Generate("BRAIN-aaaa0001", "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token when disabled, got %q", token)
	}
	if _, err := svc.Parse("whatever"); !errors.Is(err, ErrClaimInvalid) {
		t.Fatalf("expected invalid error when disabled, got %v", err)
	}

	// Deshabilitado no exige tokens ni para brains con owner.
	owned := domain.Brain{ID: "BRAIN-aaaa0001", UserID: "user-1"}
	if err := svc.Authorize(owned, ""); err != nil {
		t.Fatalf("expected open access when disabled, got %v", err)
	}
}

func TestClaimTokenRoundTrip(t *testing.T) {
	svc := NewClaimTokenService("test-secret", time.Hour)

	token, err := svc.Generate("BRAIN-aaaa0001", "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected signed token")
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.BrainID != "BRAIN-aaaa0001" {
		t.Fatalf("expected brain id in claims, got %q", claims.BrainID)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user id in claims, got %q", claims.UserID)
	}
}

func TestClaimTokenParseErrors(t *testing.T) {
	svc := NewClaimTokenService("test-secret", time.Hour)

	if _, err := svc.Parse(""); !errors.Is(err, ErrClaimInvalid) {
		t.Fatalf("expected invalid error for empty token, got %v", err)
	}
	if _, err := svc.Parse("not-a-jwt"); !errors.Is(err, ErrClaimInvalid) {
		t.Fatalf("expected invalid error for garbage token, got %v", err)
	}

	other := NewClaimTokenService("different-secret", time.Hour)
	token, err := other.Generate("BRAIN-aaaa0001", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrClaimInvalid) {
		t.Fatalf("expected invalid error for wrong secret, got %v", err)
	}
}

func TestClaimTokenExpired(t *testing.T) {
	svc := NewClaimTokenService("test-secret", time.Nanosecond)

	token, err := svc.Generate("BRAIN-aaaa0001", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := svc.Parse(token); !errors.Is(err, ErrClaimExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestClaimTokenAuthorize(t *testing.T) {
	svc := NewClaimTokenService("test-secret", time.Hour)

	anonymous := domain.Brain{ID: "BRAIN-aaaa0001"}
	if err := svc.Authorize(anonymous, ""); err != nil {
		t.Fatalf("expected anonymous brain open, got %v", err)
	}

	owned := domain.Brain{ID: "BRAIN-aaaa0001", UserID: "user-1"}
	if err := svc.Authorize(owned, ""); !errors.Is(err, ErrClaimRequired) {
		t.Fatalf("expected required error, got %v", err)
	}

	token, err := svc.Generate(owned.ID, owned.UserID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Authorize(owned, token); err != nil {
		t.Fatalf("expected token accepted, got %v", err)
	}

	otherToken, err := svc.Generate("BRAIN-bbbb0002", "user-2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Authorize(owned, otherToken); !errors.Is(err, ErrClaimInvalid) {
		t.Fatalf("expected invalid error for mismatched brain, got %v", err)
	}
}

package auth

import (
	"testing"

	"github.com/civicworks/triage-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	tokenStr, expiresAt, err := tm.GenerateToken("acc-1", domain.RoleCouncil, "Council Clerk")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatal("expected expiry to be set")
	}

	claims, err := tm.ParseToken(tokenStr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != "acc-1" {
		t.Fatalf("subject = %s", claims.SubjectID)
	}
	if claims.Role != domain.RoleCouncil {
		t.Fatalf("role = %s", claims.Role)
	}
	if claims.DisplayName != "Council Clerk" {
		t.Fatalf("name = %s", claims.DisplayName)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	tokenStr, _, err := issuer.GenerateToken("acc-1", domain.RoleCitizen, "Reporter")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ParseToken(tokenStr); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	if _, err := tm.ParseToken("not-a-token"); err == nil {
		t.Fatal("expected parse failure")
	}
}

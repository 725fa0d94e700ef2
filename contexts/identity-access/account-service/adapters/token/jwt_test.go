package token

import (
	"testing"
	"time"

	"tasktrack/contexts/identity-access/account-service/ports"
	"tasktrack/internal/shared/access"
)

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	codec := Codec{Secret: []byte("test-secret"), TTL: time.Hour}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	signed, expiresAt, err := codec.Issue(ports.TokenClaims{AccountID: "acct_1", Role: access.RoleAdmin}, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour out, got %s", expiresAt)
	}

	claims, err := codec.Verify(signed, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.AccountID != "acct_1" || claims.Role != access.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec := Codec{Secret: []byte("test-secret"), TTL: time.Hour}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	signed, _, err := codec.Issue(ports.TokenClaims{AccountID: "acct_1", Role: access.RoleStandard}, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := codec.Verify(signed, now.Add(2*time.Hour)); err == nil {
		t.Fatal("expected an expired token to fail verification")
	}
}

func TestVerifyRejectsForeignSecretAndGarbage(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	issuer := Codec{Secret: []byte("secret-a"), TTL: time.Hour}
	verifier := Codec{Secret: []byte("secret-b"), TTL: time.Hour}

	signed, _, err := issuer.Issue(ports.TokenClaims{AccountID: "acct_1", Role: access.RoleStandard}, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(signed, now); err == nil {
		t.Fatal("expected a token signed with another secret to fail")
	}
	if _, err := verifier.Verify("not.a.token", now); err == nil {
		t.Fatal("expected garbage to fail verification")
	}
	if _, err := verifier.Verify("", now); err == nil {
		t.Fatal("expected an empty token to fail verification")
	}
}

func TestDefaultTTL(t *testing.T) {
	codec := Codec{Secret: []byte("test-secret")}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	_, expiresAt, err := codec.Issue(ports.TokenClaims{AccountID: "acct_1"}, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(8 * time.Hour)) {
		t.Fatalf("expected the 8 hour default window, got %s", expiresAt)
	}
}

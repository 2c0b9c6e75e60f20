package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func newTestService(secret string) *TokenService {
	return NewTokenService([]byte(secret), time.Hour, 15*time.Minute)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestService("super-secret")

	for _, u := range []string{"u1", "alice", "bob.smith", "user-123"} {
		tok, err := s.IssueSessionToken(u)
		if err != nil {
			t.Fatalf("IssueSessionToken error: %v", err)
		}

		got, err := s.VerifySessionToken(tok)
		if err != nil {
			t.Fatalf("VerifySessionToken error: %v", err)
		}
		if got != u {
			t.Fatalf("subject mismatch: got %q want %q", got, u)
		}
	}
}

func TestResetToken_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestService("super-secret")
	fp := Fingerprint("$2a$04$hash")

	tok, err := s.IssueResetToken("alice", fp)
	if err != nil {
		t.Fatalf("IssueResetToken error: %v", err)
	}

	claims, err := s.VerifyResetToken(tok)
	if err != nil {
		t.Fatalf("VerifyResetToken error: %v", err)
	}
	if claims.Subject != "alice" || claims.Fingerprint != fp {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestPurposeIsolation(t *testing.T) {
	t.Parallel()

	s := newTestService("secret")

	reset, err := s.IssueResetToken("alice", Fingerprint("h"))
	if err != nil {
		t.Fatalf("IssueResetToken error: %v", err)
	}
	if _, err := s.VerifySessionToken(reset); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("reset token accepted as session token: %v", err)
	}

	session, err := s.IssueSessionToken("alice")
	if err != nil {
		t.Fatalf("IssueSessionToken error: %v", err)
	}
	if _, err := s.VerifyResetToken(session); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("session token accepted as reset token: %v", err)
	}
}

func TestPurposeClaimChecked_EvenWithRightKey(t *testing.T) {
	t.Parallel()

	s := newTestService("secret")

	// signed with the session key but labelled as a reset token
	tok, err := s.issue("alice", PurposeReset, "fp", s.sessionKey, time.Hour)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := s.VerifySessionToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"), -1*time.Second, time.Minute)

	tok, err := s.IssueSessionToken("u1")
	if err != nil {
		t.Fatalf("IssueSessionToken error: %v", err)
	}

	_, err = s.VerifySessionToken(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expired token must be an authentication error, got %v", err)
	}
}

func TestVerifyResetToken_ExpiresAfterWindow(t *testing.T) {
	t.Parallel()

	s := newTestService("secret")
	base := time.Now()
	s.now = func() time.Time { return base }

	tok, err := s.IssueResetToken("alice", "fp")
	if err != nil {
		t.Fatalf("IssueResetToken error: %v", err)
	}

	s.now = func() time.Time { return base.Add(14 * time.Minute) }
	if _, err := s.VerifyResetToken(tok); err != nil {
		t.Fatalf("token inside window rejected: %v", err)
	}

	s.now = func() time.Time { return base.Add(16 * time.Minute) }
	if _, err := s.VerifyResetToken(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after window, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestService("right-secret").IssueSessionToken("u2")
	if err != nil {
		t.Fatalf("IssueSessionToken error: %v", err)
	}

	if _, err := newTestService("wrong-secret").VerifySessionToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for invalid signature, got %v", err)
	}
}

func TestVerify_MissingAndMalformed(t *testing.T) {
	t.Parallel()

	s := newTestService("k")

	if _, err := s.VerifySessionToken(""); !errors.Is(err, common.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if _, err := s.VerifyResetToken(""); !errors.Is(err, common.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if _, err := s.VerifySessionToken("not.a.jwt"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestVerify_RejectsAlgNone(t *testing.T) {
	t.Parallel()

	s := newTestService("k")
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Purpose: PurposeSession,
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := s.VerifySessionToken(signed); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("alg=none must be rejected, got %v", err)
	}
}

func TestIssue_Validation(t *testing.T) {
	t.Parallel()

	s := newTestService("k")
	if _, err := s.IssueSessionToken(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
	if _, err := s.IssueResetToken("alice", ""); err == nil {
		t.Fatal("expected error for empty fingerprint")
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint("hash-a")
	if len(a) != 32 || strings.ToLower(a) != a {
		t.Fatalf("unexpected fingerprint format %q", a)
	}
	if a == Fingerprint("hash-b") {
		t.Fatal("different hashes must give different fingerprints")
	}
	if a != Fingerprint("hash-a") {
		t.Fatal("fingerprint must be deterministic")
	}
}

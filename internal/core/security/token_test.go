package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

var alice = domain.Principal{ID: 7, Username: "alice", Role: domain.RoleUser}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestToken_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	verifier := NewTokenVerifier("secret")

	issued, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Token == "" {
		t.Fatalf("expected a token")
	}
	if time.Until(issued.ExpiresAt) <= 59*time.Minute {
		t.Fatalf("unexpected expiry %v", issued.ExpiresAt)
	}

	p, err := verifier.Verify(issued.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if *p != alice {
		t.Fatalf("expected %+v, got %+v", alice, *p)
	}
}

func TestToken_ZeroTTLIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer := NewTokenIssuer("secret", 0)
	issuer.now = fixedClock(now)
	verifier := NewTokenVerifier("secret")
	verifier.now = fixedClock(now.Add(time.Millisecond))

	issued, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = verifier.Verify(issued.Token)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if !IsExpired(err) {
		t.Fatalf("expected expiry to be the cause, got %v", err)
	}
}

func TestToken_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = fixedClock(now)
	issued, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verifier := NewTokenVerifier("secret")
	verifier.now = fixedClock(now.Add(59 * time.Minute))
	if _, err := verifier.Verify(issued.Token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	verifier.now = fixedClock(now.Add(61 * time.Minute))
	if _, err := verifier.Verify(issued.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after expiry, got %v", err)
	}
}

func TestToken_WrongSecret(t *testing.T) {
	issued, err := NewTokenIssuer("secret-a", time.Hour).Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = NewTokenVerifier("secret-b").Verify(issued.Token)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: domain.RoleAdmin,
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	verifier := NewTokenVerifier("secret")
	for name, tok := range map[string]string{"HS512": hs512, "none": none} {
		if _, err := verifier.Verify(tok); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestToken_MalformedPayload(t *testing.T) {
	sign := func(c Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := map[string]string{
		"empty":       "",
		"garbage":     "not.a.token",
		"no exp":      sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}, Role: domain.RoleUser}),
		"bad subject": sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc", ExpiresAt: exp}, Role: domain.RoleUser}),
		"zero id":     sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp}, Role: domain.RoleUser}),
		"bad role":    sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7", ExpiresAt: exp}, Role: "root"}),
	}

	verifier := NewTokenVerifier("secret")
	for name, tok := range cases {
		if _, err := verifier.Verify(tok); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestToken_TamperedPayload(t *testing.T) {
	issued, err := NewTokenIssuer("secret", time.Hour).Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(issued.Token, ".")
	adminIssued, err := NewTokenIssuer("other", time.Hour).Issue(domain.Principal{ID: 7, Username: "alice", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue admin: %v", err)
	}
	// Admin payload spliced onto alice's signature.
	parts[1] = strings.Split(adminIssued.Token, ".")[1]

	if _, err := NewTokenVerifier("secret").Verify(strings.Join(parts, ".")); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for tampered token, got %v", err)
	}
}

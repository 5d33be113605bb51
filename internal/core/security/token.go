package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// Claims is the payload of an access token. Role is a snapshot taken at
// issuance; verification trusts it without consulting storage.
type Claims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// IssuedToken is a signed access token and the instant it stops verifying.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer mints HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret. ttl is used as
// given: zero or negative produces tokens that are already expired.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for p.
func (i *TokenIssuer) Issue(p domain.Principal) (IssuedToken, error) {
	now := i.now()
	exp := now.Add(i.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username: p.Username,
		Role:     p.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// TokenVerifier validates access tokens and rebuilds the acting principal.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier returns a verifier that accepts tokens signed with secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Verify checks signature, algorithm and expiry. Every failure wraps
// domain.ErrUnauthenticated; the underlying cause is kept for logging only.
func (v *TokenVerifier) Verify(token string) (*domain.Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrUnauthenticated)
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: malformed subject", domain.ErrUnauthenticated)
	}
	if _, ok := domain.ParseRole(string(claims.Role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthenticated, claims.Role)
	}

	return &domain.Principal{ID: id, Username: claims.Username, Role: claims.Role}, nil
}

// IsExpired reports whether err came from an expired token. Used to label
// metrics; clients always see the same 401.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

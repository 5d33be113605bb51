// Package security holds the authentication and authorization core: password
// hashing and policy, bearer token issuance and verification, and the role
// guard applied to every protected route.
//
// Nothing in this package touches storage or the network. The signing
// secret is injected through constructors and is read-only afterwards, so
// issuers and verifiers are safe for concurrent use.
package security

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords with bcrypt. The encoded
// hash embeds cost and salt, so raising the cost later needs no migration.
//
// bcrypt is CPU bound; the semaphore caps how many computations run at once
// without serialising them.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewPasswordHasher returns a hasher using cost (bcrypt.DefaultCost when out
// of range) and at most concurrency parallel computations (NumCPU when <= 0).
func NewPasswordHasher(cost, concurrency int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(int64(concurrency))}
}

// Hash returns a freshly salted bcrypt encoding of plaintext.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. A malformed hash or a
// cancelled context yields false.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, hashed string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

package ports

import (
	"context"
	"time"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *domain.User
}

// AuthService authenticates credentials and mints access tokens. clientIP
// is the caller's address as seen by the HTTP layer.
type AuthService interface {
	Login(ctx context.Context, username, password, clientIP string) (*LoginResult, error)
}

// LoginThrottle limits repeated failed logins per username and client
// address. Failures from one address never block another.
type LoginThrottle interface {
	Blocked(ctx context.Context, username, clientIP string) (bool, error)
	Fail(ctx context.Context, username, clientIP string) error
	Reset(ctx context.Context, username, clientIP string) error
}

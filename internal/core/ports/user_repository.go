package ports

import (
	"context"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// UserRepository is the credential store consumed by the auth core.
// Lookups return domain.ErrUserNotFound when nothing matches; writes that
// collide on username, email or phone return domain.ErrUserExists.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Create assigns the next id and persists user.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update replaces the mutable fields of an existing user.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
}

package ports

import (
	"context"
	"io"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// RegisterInput carries a new account. Role is optional and defaults to user.
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
	Role     string
}

// UpdateUserInput is a partial update. A nil field is left untouched; an
// empty string clears optional fields (email, phone) and is rejected for
// required ones (username, password).
type UpdateUserInput struct {
	Username *string
	Email    *string
	Phone    *string
	Password *string
	Role     *string
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UserService manages accounts.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	// UpdateSelf applies email, phone and password changes for the acting user.
	UpdateSelf(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error)
	UpdateByAdmin(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error)
	SetRole(ctx context.Context, id int64, role string) (*domain.User, error)
	SetAvatar(ctx context.Context, id int64, file Upload) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

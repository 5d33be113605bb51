package ports

import (
	"context"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// CreateTaskInput carries a new task and its optional attachment.
type CreateTaskInput struct {
	Name        string
	Description string
	Attachment  *Upload
}

// UpdateTaskInput is a partial update following the same nil/empty rules as
// UpdateUserInput: Name may not be cleared, Description may.
type UpdateTaskInput struct {
	Name        *string
	Description *string
}

// TaskService manages tasks on behalf of an authenticated principal.
type TaskService interface {
	Create(ctx context.Context, owner domain.Principal, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, id int64, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}

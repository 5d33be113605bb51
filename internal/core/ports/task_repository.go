package ports

import (
	"context"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// TaskRepository persists tasks. Missing ids return domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Task, error)
}

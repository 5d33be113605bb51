package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
)

const maxAttachmentBytes = 10 << 20

type TaskService struct {
	tasks   ports.TaskRepository
	users   ports.UserRepository
	files   ports.FileStore
	cleanup ports.CleanupQueue
	log     zerolog.Logger
	now     func() time.Time
}

func NewTaskService(
	tasks ports.TaskRepository,
	users ports.UserRepository,
	files ports.FileStore,
	cleanup ports.CleanupQueue,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{tasks: tasks, users: users, files: files, cleanup: cleanup, log: log, now: time.Now}
}

// Create stores a task owned by owner. The owner must still exist; a token
// outliving its account cannot create tasks.
func (s *TaskService) Create(ctx context.Context, owner domain.Principal, in ports.CreateTaskInput) (*domain.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if in.Attachment != nil && in.Attachment.Size > maxAttachmentBytes {
		return nil, fmt.Errorf("%w: attachment exceeds 10MB", domain.ErrFileTooLarge)
	}

	if _, err := s.users.FindByID(ctx, owner.ID); err != nil {
		return nil, err
	}

	var attachment string
	if in.Attachment != nil {
		path, err := s.files.Save(ctx, "attachment", in.Attachment.Filename, in.Attachment.Content)
		if err != nil {
			return nil, fmt.Errorf("save attachment: %w", err)
		}
		attachment = path
	}

	now := s.now().UTC()
	task, err := s.tasks.Create(ctx, &domain.Task{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Attachment:  attachment,
		UserID:      owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if attachment != "" {
			s.cleanup.Enqueue(attachment)
		}
		return nil, err
	}

	s.log.Info().
		Int64("task_id", task.ID).
		Int64("user_id", owner.ID).
		Bool("attachment", attachment != "").
		Msg("task created")
	return task, nil
}

func (s *TaskService) List(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.List(ctx)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) Update(ctx context.Context, id int64, in ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "cannot be empty")
		}
		task.Name = name
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}

	task.UpdatedAt = s.now().UTC()
	return s.tasks.Update(ctx, task)
}

// Delete removes the task and schedules removal of its attachment.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	if task.Attachment != "" {
		s.cleanup.Enqueue(task.Attachment)
	}
	s.log.Info().Int64("task_id", id).Msg("task deleted")
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
	"github.com/tasktrack/tasktrack-api/internal/core/security"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxAvatarBytes   = 2 << 20
)

var avatarTypes = map[string]struct{}{
	"image/jpg":  {},
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// fields validates single values (emails) inside the service, where the
// request struct tags of the transport layer are not available.
var fields = validator.New()

type UserService struct {
	repo    ports.UserRepository
	hasher  *security.PasswordHasher
	files   ports.FileStore
	cleanup ports.CleanupQueue
	log     zerolog.Logger
	now     func() time.Time
}

func NewUserService(
	repo ports.UserRepository,
	hasher *security.PasswordHasher,
	files ports.FileStore,
	cleanup ports.CleanupQueue,
	log zerolog.Logger,
) *UserService {
	return &UserService{repo: repo, hasher: hasher, files: files, cleanup: cleanup, log: log, now: time.Now}
}

// Register validates, hashes and stores a new account. Policy failures abort
// before any hashing or persistence.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}
	if err := security.CheckPassword(in.Password); err != nil {
		return nil, err
	}
	if err := checkEmail(in.Email); err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if in.Role != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, domain.NewValidationError("role", "must be one of: user admin")
		}
		role = r
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// List pages through users. limit defaults to 20 and is capped at 100.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, offset, limit)
}

// UpdateSelf lets a user change their own contact details and password.
// Username and role are not self-service.
func (s *UserService) UpdateSelf(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	in.Username, in.Role = nil, nil
	return s.update(ctx, id, in)
}

// UpdateByAdmin applies any field of in to the user with the given id.
func (s *UserService) UpdateByAdmin(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	return s.update(ctx, id, in)
}

// SetRole replaces the stored role. Tokens already issued keep the role
// they were minted with until they expire.
func (s *UserService) SetRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	return s.update(ctx, id, ports.UpdateUserInput{Role: &role})
}

// SetAvatar stores an image and points the user's avatar at it. The
// previous avatar file, if any, is removed asynchronously.
func (s *UserService) SetAvatar(ctx context.Context, id int64, file ports.Upload) (*domain.User, error) {
	if _, ok := avatarTypes[strings.ToLower(file.ContentType)]; !ok {
		return nil, fmt.Errorf("%w: only jpg, jpeg, png and gif images are allowed", domain.ErrUnsupportedFile)
	}
	if file.Size > maxAvatarBytes {
		return nil, fmt.Errorf("%w: avatar exceeds 2MB", domain.ErrFileTooLarge)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.files.Save(ctx, "avatar", file.Filename, file.Content)
	if err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	previous := user.Avatar
	user.Avatar = path
	user.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		s.cleanup.Enqueue(path)
		return nil, err
	}
	if previous != "" {
		s.cleanup.Enqueue(previous)
	}
	return updated, nil
}

// Delete removes the account permanently.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if user.Avatar != "" {
		s.cleanup.Enqueue(user.Avatar)
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// update merges in into the stored user. Every field is validated before
// the password (if any) is hashed, and nothing is written on failure.
func (s *UserService) update(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, domain.NewValidationError("username", "cannot be empty")
		}
		user.Username = username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := checkEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			return nil, domain.NewValidationError("role", "must be one of: user admin")
		}
		user.Role = role
	}
	if in.Password != nil {
		if err := security.CheckPassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, user)
}

func checkEmail(email string) error {
	if email == "" {
		return nil
	}
	if err := fields.Var(email, "email"); err != nil {
		return domain.NewValidationError("email", "must be a valid email")
	}
	return nil
}

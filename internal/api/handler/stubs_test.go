package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/tasktrack-api/internal/api/middleware"
	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password, clientIP string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password, clientIP string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password, clientIP)
}

type stubUserService struct {
	registerFn      func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	getFn           func(ctx context.Context, id int64) (*domain.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	listFn          func(ctx context.Context, offset, limit int) ([]*domain.User, error)
	updateSelfFn    func(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error)
	updateByAdminFn func(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error)
	setRoleFn       func(ctx context.Context, id int64, role string) (*domain.User, error)
	setAvatarFn     func(ctx context.Context, id int64, file ports.Upload) (*domain.User, error)
	deleteFn        func(ctx context.Context, id int64) error
}

func (s *stubUserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *stubUserService) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	return s.listFn(ctx, offset, limit)
}

func (s *stubUserService) UpdateSelf(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateSelfFn(ctx, id, in)
}

func (s *stubUserService) UpdateByAdmin(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateByAdminFn(ctx, id, in)
}

func (s *stubUserService) SetRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	return s.setRoleFn(ctx, id, role)
}

func (s *stubUserService) SetAvatar(ctx context.Context, id int64, file ports.Upload) (*domain.User, error) {
	return s.setAvatarFn(ctx, id, file)
}

func (s *stubUserService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

type stubTaskService struct {
	createFn func(ctx context.Context, owner domain.Principal, in ports.CreateTaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context) ([]*domain.Task, error)
	getFn    func(ctx context.Context, id int64) (*domain.Task, error)
	updateFn func(ctx context.Context, id int64, in ports.UpdateTaskInput) (*domain.Task, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *stubTaskService) Create(ctx context.Context, owner domain.Principal, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, owner, in)
}

func (s *stubTaskService) List(ctx context.Context) ([]*domain.Task, error) {
	return s.listFn(ctx)
}

func (s *stubTaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.getFn(ctx, id)
}

func (s *stubTaskService) Update(ctx context.Context, id int64, in ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubTaskService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

// newJSONContext builds an echo context for a JSON request, optionally
// carrying an authenticated principal.
func newJSONContext(method, target, body string, p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set(middleware.PrincipalKey, p)
	}
	return c, rec
}

package handler

import (
	"time"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

// ErrorResponse is the standard error envelope returned on all 4xx/5xx responses.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        loginUser `json:"user"`
}

// --- Users ---

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
	Phone    string `json:"phone"    validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin USER ADMIN"`
}

// updateSelfRequest is the body of PATCH /user/current. Absent fields are
// left untouched; "" clears email or phone.
type updateSelfRequest struct {
	Email    *string `json:"email"    validate:"omitempty,max=254"`
	Phone    *string `json:"phone"    validate:"omitempty,max=32"`
	Password *string `json:"password"`
}

// updateUserRequest is the body of PATCH /user/update/:id.
type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=64"`
	Email    *string `json:"email"    validate:"omitempty,max=254"`
	Phone    *string `json:"phone"    validate:"omitempty,max=32"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- Tasks ---

// updateTaskRequest is the body of PATCH /tasks/:id. "" clears description.
type updateTaskRequest struct {
	Name        *string `json:"name"        validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type taskResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Attachment  string    `json:"attachment,omitempty"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

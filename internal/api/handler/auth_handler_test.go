package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password, clientIP string) (*ports.LoginResult, error) {
			if username != "alice" || password != "Passw0rd" || clientIP != "192.0.2.1" {
				t.Fatalf("unexpected args: %s %s %s", username, password, clientIP)
			}
			return &ports.LoginResult{
				AccessToken: "token123",
				ExpiresAt:   expires,
				User:        &domain.User{ID: 7, Username: "alice", Role: domain.RoleUser, PasswordHash: "$2a$hash"},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"username":"alice","password":"Passw0rd"}`, nil)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["accessToken"] != "token123" {
		t.Fatalf("expected token, got %v", resp["accessToken"])
	}
	if resp["expiresAt"] != "2026-03-01T13:00:00Z" {
		t.Fatalf("unexpected expiry %v", resp["expiresAt"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "user" || user["id"] != float64(7) {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must never be serialised")
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrTooManyAttempts} {
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, username, password, clientIP string) (*ports.LoginResult, error) {
				return nil, want
			},
		}
		c, _ := newJSONContext(http.MethodPost, "/auth/login", `{"username":"alice","password":"bad"}`, nil)

		if err := NewAuthHandler(stub).Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password, clientIP string) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := newJSONContext(http.MethodPost, "/auth/login", "{", nil)

	err := NewAuthHandler(stub).Login(c)
	assertHTTPError(t, err, http.StatusBadRequest)
}

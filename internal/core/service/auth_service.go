package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
	"github.com/tasktrack/tasktrack-api/internal/core/security"
)

// AuthService implements login: credential lookup, password verification and
// token issuance.
type AuthService struct {
	repo     ports.UserRepository
	hasher   *security.PasswordHasher
	issuer   *security.TokenIssuer
	throttle ports.LoginThrottle
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the login flow. throttle may be nil.
func NewAuthService(
	repo ports.UserRepository,
	hasher *security.PasswordHasher,
	issuer *security.TokenIssuer,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, issuer: issuer, throttle: throttle, log: log}
}

// Login returns a signed access token for valid credentials. Unknown users
// and wrong passwords both yield domain.ErrInvalidCredentials. An attempt
// abandoned by the caller returns the context error and is not counted as
// a failure.
func (s *AuthService) Login(ctx context.Context, username, password, clientIP string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, username, clientIP)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
		} else if blocked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Spend the same bcrypt work as a real check so response time does
		// not reveal whether the username exists.
		s.hasher.Verify(ctx, password, s.dummy())
		return nil, s.reject(ctx, username, clientIP)
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, s.reject(ctx, username, clientIP)
	}

	issued, err := s.issuer.Issue(user.Principal())
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username, clientIP); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")

	return &ports.LoginResult{
		AccessToken: issued.Token,
		ExpiresAt:   issued.ExpiresAt,
		User:        user,
	}, nil
}

// reject counts a failed verification. A verification cut short by a
// cancelled context says nothing about the password and is not counted.
func (s *AuthService) reject(ctx context.Context, username, clientIP string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.log.Debug().Str("username", username).Str("client_ip", clientIP).Msg("login rejected")
	if s.throttle != nil {
		if err := s.throttle.Fail(ctx, username, clientIP); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login failure")
		}
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		b := make([]byte, 16)
		_, _ = rand.Read(b)
		h, err := s.hasher.Hash(context.Background(), hex.EncodeToString(b))
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy hash")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

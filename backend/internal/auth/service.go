// Package auth handles signup, email verification and login, and guards
// routes with bearer tokens.
package auth

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-graph/backend/internal/graph"
	"recipe-graph/backend/internal/mailer"
	apperrors "recipe-graph/backend/pkg/errors"
	"recipe-graph/backend/pkg/logger"
)

// UserStore is the part of the graph repository accounts need
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*graph.User, string, error)
	VerifyUser(ctx context.Context, token string) (*graph.User, error)
	GetCredentials(ctx context.Context, email string) (*graph.Credentials, error)
}

// Session is what a successful login returns
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *graph.User `json:"user"`
}

// Options configures the auth service
type Options struct {
	// PublicBaseURL prefixes the verification link, e.g. https://app.example.com
	PublicBaseURL            string
	RequireEmailVerification bool
}

// Service implements the account flows
type Service struct {
	store  UserStore
	tokens *TokenService
	mailer mailer.Mailer
	opts   Options
	logger *zap.Logger
}

// NewService creates an auth service
func NewService(store UserStore, tokens *TokenService, m mailer.Mailer, opts Options) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		mailer: m,
		opts:   opts,
		logger: logger.Named("auth"),
	}
}

// Signup creates an unverified account and mails its verification link.
// A failed email is logged and does not undo the signup.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*graph.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apperrors.NewInvalidArgument("email", "not a valid address")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewInvalidArgument("name", "required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.NewInvalidArgument("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return nil, apperrors.NewInvalidArgument("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, token, err := s.store.CreateUser(ctx, name, email, hash)
	if err != nil {
		return nil, err
	}

	subject, body := mailer.VerificationMessage(user.Name, s.verificationLink(token))
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.Warn("Verification email not sent", zap.String("email", user.Email), zap.Error(err))
	}

	s.logger.Info("User signed up", zap.String("email", user.Email))
	return user, nil
}

// Verify consumes a verification token
func (s *Service) Verify(ctx context.Context, token string) (*graph.User, error) {
	return s.store.VerifyUser(ctx, strings.TrimSpace(token))
}

// Login checks credentials and issues a session token. Unknown emails yield
// NotFound, wrong passwords Unauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidArgument("credentials", "email and password are required")
	}

	creds, err := s.store.GetCredentials(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := CheckPassword(creds.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		s.logger.Info("Login rejected", zap.String("email", email), zap.String("reason", "password mismatch"))
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if s.opts.RequireEmailVerification && !creds.Verified {
		s.logger.Info("Login rejected", zap.String("email", email), zap.String("reason", "unverified"))
		return nil, apperrors.NewUnauthorized("email address not verified")
	}

	token, expiresAt, err := s.tokens.Issue(creds.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("email", creds.Email))
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User: &graph.User{
			Email:    creds.Email,
			Name:     creds.Name,
			Verified: creds.Verified,
		},
	}, nil
}

func (s *Service) verificationLink(token string) string {
	base := strings.TrimRight(s.opts.PublicBaseURL, "/")
	return base + "/api/auth/verify?token=" + url.QueryEscape(token)
}

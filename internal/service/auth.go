// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/billax/billax/internal/auth"
	"github.com/billax/billax/internal/cache"
	"github.com/billax/billax/internal/mail"
	"github.com/billax/billax/internal/metrics"
	"github.com/billax/billax/internal/model"
	"github.com/billax/billax/internal/repository"
)

// Service errors.
var (
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidName        = errors.New("name must be 2-50 letters, spaces, apostrophes, or hyphens")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrUserNotFound       = errors.New("user not found")
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ' -]{2,50}$`)
)

// AuthService handles registration, login, and password management.
type AuthService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	tokens  *auth.TokenIssuer
	mailer  *mail.Mailer
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.Repository, c *cache.Cache, tokens *auth.TokenIssuer, mailer *mail.Mailer, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		repo:    repo,
		cache:   c,
		tokens:  tokens,
		mailer:  mailer,
		logger:  logger,
		metrics: recorder,
	}
}

// RegisterInput defines input for user registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// AuthResult bundles a token with the authenticated user.
type AuthResult struct {
	Token string
	User  *model.User
}

// Register validates the input, creates the user, and issues an access
// token so the client is logged in immediately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if !nameRegex.MatchString(firstName) || !nameRegex.MatchString(lastName) {
		return nil, ErrInvalidName
	}
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := model.RoleUser
	if strings.EqualFold(input.Role, string(model.RoleAdmin)) {
		role = model.RoleAdmin
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncRegistration()
	s.logger.Info("user registered", slog.String("user_id", user.ID))

	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies the credentials and issues an access token. Unknown
// email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin("failure")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin("success")
	return &AuthResult{Token: token, User: user}, nil
}

// Logout revokes the presented token by blacklisting its jti until the
// token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Verify(tokenString, auth.TokenTypeAccess)
	if err != nil {
		return ErrInvalidCredentials
	}

	if err := s.cache.BlacklistToken(ctx, claims.ID, claims.ExpiresIn()); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	s.logger.Info("user logged out", slog.String("user_id", claims.Subject))
	return nil
}

// RequestPasswordReset issues a reset token and emails it. A missing
// email is not an error, to prevent account enumeration.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := s.tokens.IssueResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if !s.mailer.Enabled() {
		// No SMTP in this environment; log the token so development
		// flows can still complete.
		s.logger.Info("password reset requested (mail disabled)",
			slog.String("user_id", user.ID),
			slog.String("reset_token", token),
		)
		return nil
	}

	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		return err
	}
	return nil
}

// ResetPassword verifies the reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims, err := s.tokens.Verify(tokenString, auth.TokenTypeReset)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateUserPassword(ctx, claims.Subject, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	// A used reset token cannot be replayed.
	if err := s.cache.BlacklistToken(ctx, claims.ID, claims.ExpiresIn()); err != nil {
		s.logger.Warn("failed to blacklist used reset token", slog.String("error", err.Error()))
	}

	s.logger.Info("password reset", slog.String("user_id", claims.Subject))
	return nil
}

// GetUser returns the user for an authenticated identity.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/billax/billax/internal/metrics"
	"github.com/billax/billax/internal/plaid"
	"github.com/billax/billax/internal/repository"
)

// Plaid link errors.
var (
	ErrAlreadyLinked = errors.New("user already has plaid connected")
	ErrNotLinked     = errors.New("user has no plaid connection")
)

// PlaidService orchestrates the Link flow and connection lifecycle.
type PlaidService struct {
	repo    *repository.Repository
	client  *plaid.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPlaidService creates a new PlaidService.
func NewPlaidService(repo *repository.Repository, client *plaid.Client, logger *slog.Logger, recorder metrics.Recorder) *PlaidService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PlaidService{
		repo:    repo,
		client:  client,
		logger:  logger,
		metrics: recorder,
	}
}

// CreateLinkToken creates a link_token for a user who has not linked yet.
func (s *PlaidService) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if user.PlaidLinked() {
		return "", ErrAlreadyLinked
	}

	return s.client.CreateLinkToken(ctx, userID)
}

// CreateSandboxPublicToken generates a sandbox public_token, bypassing the
// interactive Link UI. Sandbox only.
func (s *PlaidService) CreateSandboxPublicToken(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if user.PlaidLinked() {
		return "", ErrAlreadyLinked
	}

	return s.client.CreateSandboxPublicToken(ctx)
}

// ExchangePublicToken swaps the public_token for a permanent access token
// and stores it on the user.
func (s *PlaidService) ExchangePublicToken(ctx context.Context, userID, publicToken string) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	accessToken, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return err
	}

	if err := s.repo.SetPlaidAccessToken(ctx, userID, accessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	s.logger.Info("plaid linked", slog.String("user_id", userID))
	return nil
}

// Disconnect drops the stored access token and deletes the user's synced
// accounts.
func (s *PlaidService) Disconnect(ctx context.Context, userID string) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.SetPlaidAccessToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}

	deleted, err := s.repo.DeleteAccountsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}

	s.logger.Info("plaid disconnected",
		slog.String("user_id", userID),
		slog.Int64("accounts_deleted", deleted),
	)
	return nil
}

// Linked reports whether the user has a stored access token.
func (s *PlaidService) Linked(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.PlaidLinked(), nil
}

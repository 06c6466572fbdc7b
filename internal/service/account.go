package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/billax/billax/internal/cache"
	"github.com/billax/billax/internal/metrics"
	"github.com/billax/billax/internal/model"
	"github.com/billax/billax/internal/plaid"
	"github.com/billax/billax/internal/repository"
)

// ErrAccountNotFound is returned when no account matches the query.
var ErrAccountNotFound = errors.New("account not found")

// AccountService syncs accounts from Plaid and serves account queries.
type AccountService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	client  *plaid.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, c *cache.Cache, client *plaid.Client, logger *slog.Logger, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		repo:    repo,
		cache:   c,
		client:  client,
		logger:  logger,
		metrics: recorder,
	}
}

// Sync pulls the user's accounts from Plaid, upserts them, and returns
// the stored rows.
func (s *AccountService) Sync(ctx context.Context, userID string) ([]*model.Account, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.PlaidLinked() {
		return nil, ErrNotLinked
	}

	start := time.Now()
	plaidAccounts, err := s.client.GetAccounts(ctx, user.PlaidAccessToken)
	if err != nil {
		s.metrics.IncAccountSync("failure")
		return nil, err
	}

	now := time.Now().UTC()
	for _, pa := range plaidAccounts {
		acct := &model.Account{
			ID:               ulid.Make().String(),
			UserID:           userID,
			PlaidAccountID:   pa.AccountID,
			Name:             pa.Name,
			Type:             pa.Type,
			Subtype:          pa.Subtype,
			Mask:             pa.Mask,
			CurrentBalance:   pa.Balances.Current,
			AvailableBalance: pa.Balances.Available,
			Limit:            pa.Balances.Limit,
			CurrencyCode:     pa.Balances.ISOCurrencyCode,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if acct.CurrencyCode == "" {
			acct.CurrencyCode = "USD"
		}
		if err := s.repo.UpsertAccount(ctx, acct); err != nil {
			s.metrics.IncAccountSync("failure")
			return nil, fmt.Errorf("failed to upsert account: %w", err)
		}
	}

	// Balances changed; cached assistant context is stale.
	if err := s.cache.InvalidateFinancialContext(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate financial context", slog.String("error", err.Error()))
	}

	s.metrics.IncAccountSync("success")
	s.metrics.ObserveSyncDuration(time.Since(start))
	s.logger.Info("accounts synced",
		slog.String("user_id", userID),
		slog.Int("count", len(plaidAccounts)),
	)

	return s.repo.ListAccountsByUser(ctx, userID)
}

// List returns all of the user's accounts.
func (s *AccountService) List(ctx context.Context, userID string) ([]*model.Account, error) {
	accounts, err := s.repo.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrAccountNotFound
	}
	return accounts, nil
}

// ListByType returns the user's accounts of one type.
func (s *AccountService) ListByType(ctx context.Context, userID, accountType string) ([]*model.Account, error) {
	accounts, err := s.repo.ListAccountsByType(ctx, userID, accountType)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrAccountNotFound
	}
	return accounts, nil
}

// Get returns one account owned by the user.
func (s *AccountService) Get(ctx context.Context, userID, accountID string) (*model.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// Delete removes one account owned by the user.
func (s *AccountService) Delete(ctx context.Context, userID, accountID string) error {
	if err := s.repo.DeleteAccount(ctx, userID, accountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

// DeleteAll removes every account for the user.
func (s *AccountService) DeleteAll(ctx context.Context, userID string) error {
	_, err := s.repo.DeleteAccountsByUser(ctx, userID)
	return err
}

// TypeSummary aggregates accounts sharing a type.
type TypeSummary struct {
	Count        int     `json:"count"`
	TotalBalance float64 `json:"total_balance"`
}

// StatusSummary splits accounts into active (non-negative balance) and
// pending buckets.
type StatusSummary struct {
	Active  TypeSummary `json:"active"`
	Pending TypeSummary `json:"pending"`
}

// BalanceTrend totals each balance dimension across accounts.
type BalanceTrend struct {
	Available float64 `json:"available"`
	Current   float64 `json:"current"`
	Limit     float64 `json:"limit"`
}

// AccountsSummary is the aggregate view over a user's accounts.
type AccountsSummary struct {
	TotalAccounts    int                    `json:"total_accounts"`
	TotalBalance     float64                `json:"total_balance"`
	AccountsByType   map[string]TypeSummary `json:"accounts_by_type"`
	AccountsByStatus StatusSummary          `json:"accounts_by_status"`
	BalanceTrend     BalanceTrend           `json:"balance_trend"`
}

// Summary aggregates the user's accounts by type and status.
func (s *AccountService) Summary(ctx context.Context, userID string) (*AccountsSummary, error) {
	accounts, err := s.repo.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrAccountNotFound
	}
	return SummarizeAccounts(accounts), nil
}

// SummarizeAccounts computes the aggregate view. Pure so it can be tested
// without a database.
func SummarizeAccounts(accounts []*model.Account) *AccountsSummary {
	summary := &AccountsSummary{
		TotalAccounts:  len(accounts),
		AccountsByType: make(map[string]TypeSummary),
	}

	for _, a := range accounts {
		var current, available, limit float64
		if a.CurrentBalance != nil {
			current = *a.CurrentBalance
		}
		if a.AvailableBalance != nil {
			available = *a.AvailableBalance
		}
		if a.Limit != nil {
			limit = *a.Limit
		}

		summary.TotalBalance += current

		byType := summary.AccountsByType[a.Type]
		byType.Count++
		byType.TotalBalance += current
		summary.AccountsByType[a.Type] = byType

		if current >= 0 {
			summary.AccountsByStatus.Active.Count++
			summary.AccountsByStatus.Active.TotalBalance += current
		} else {
			summary.AccountsByStatus.Pending.Count++
			summary.AccountsByStatus.Pending.TotalBalance += current
		}

		summary.BalanceTrend.Available += available
		summary.BalanceTrend.Current += current
		summary.BalanceTrend.Limit += limit
	}

	return summary
}

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

// Transaction service errors.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

const (
	// defaultSyncWindow is the range pulled when no dates are given.
	defaultSyncWindow = 90 * 24 * time.Hour
	dateLayout        = "2006-01-02"
)

// TransactionService syncs transactions from Plaid and serves queries
// over the stored rows.
type TransactionService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	client  *plaid.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(repo *repository.Repository, c *cache.Cache, client *plaid.Client, logger *slog.Logger, recorder metrics.Recorder) *TransactionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TransactionService{
		repo:    repo,
		cache:   c,
		client:  client,
		logger:  logger,
		metrics: recorder,
	}
}

// SyncInput defines input for a transaction sync. Dates are YYYY-MM-DD;
// when empty the last 90 days are pulled. Count caps how many
// transactions are fetched, 0 means all in range.
type SyncInput struct {
	StartDate string
	EndDate   string
	Count     int
}

// SyncResult summarizes a completed sync.
type SyncResult struct {
	TotalFetched  int    `json:"total_fetched"`
	AccountsCount int    `json:"accounts_count"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

// resolveSyncWindow fills in default dates and validates the range.
func resolveSyncWindow(input SyncInput, now time.Time) (start, end time.Time, err error) {
	end = now
	if input.EndDate != "" {
		end, err = time.Parse(dateLayout, input.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDateRange
		}
	}

	start = end.Add(-defaultSyncWindow)
	if input.StartDate != "" {
		start, err = time.Parse(dateLayout, input.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDateRange
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}

// Sync pulls the user's transactions from Plaid for the window and
// upserts them.
func (s *TransactionService) Sync(ctx context.Context, userID string, input SyncInput) (*SyncResult, error) {
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

	start, end, err := resolveSyncWindow(input, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	syncStart := time.Now()
	result, err := s.client.GetTransactions(ctx, user.PlaidAccessToken,
		start.Format(dateLayout), end.Format(dateLayout), input.Count)
	if err != nil {
		s.metrics.IncTransactionSync("failure")
		return nil, err
	}

	now := time.Now().UTC()
	for _, pt := range result.Transactions {
		tx, err := transactionFromPlaid(pt, userID, now)
		if err != nil {
			s.logger.Warn("skipping malformed transaction",
				slog.String("plaid_transaction_id", pt.TransactionID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := s.repo.UpsertTransaction(ctx, tx); err != nil {
			s.metrics.IncTransactionSync("failure")
			return nil, fmt.Errorf("failed to upsert transaction: %w", err)
		}
	}

	if err := s.cache.InvalidateFinancialContext(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate financial context", slog.String("error", err.Error()))
	}

	s.metrics.IncTransactionSync("success")
	s.metrics.ObserveSyncDuration(time.Since(syncStart))
	s.logger.Info("transactions synced",
		slog.String("user_id", userID),
		slog.Int("count", len(result.Transactions)),
	)

	return &SyncResult{
		TotalFetched:  len(result.Transactions),
		AccountsCount: len(result.Accounts),
		StartDate:     start.Format(dateLayout),
		EndDate:       end.Format(dateLayout),
	}, nil
}

// transactionFromPlaid maps a Plaid transaction onto the local model.
func transactionFromPlaid(pt plaid.Transaction, userID string, now time.Time) (*model.Transaction, error) {
	date, err := time.Parse(dateLayout, pt.Date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", pt.Date, err)
	}

	categoryPrimary := ""
	if len(pt.Category) > 0 {
		categoryPrimary = pt.Category[0]
	}

	return &model.Transaction{
		ID:                 ulid.Make().String(),
		PlaidTransactionID: pt.TransactionID,
		AccountID:          pt.AccountID,
		UserID:             userID,
		Name:               pt.Name,
		Amount:             pt.Amount,
		Date:               date,
		MerchantName:       pt.MerchantName,
		CategoryPrimary:    categoryPrimary,
		Categories:         pt.Category,
		PaymentChannel:     pt.PaymentChannel,
		Pending:            pt.Pending,
		Location: model.TransactionLocation{
			Address: pt.Location.Address,
			City:    pt.Location.City,
			Region:  pt.Location.Region,
			Country: pt.Location.Country,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ListInput defines input for listing stored transactions.
type ListInput struct {
	Limit     int
	Offset    int
	StartDate string
	EndDate   string
	AccountID string
}

// ListResult is a page of transactions.
type ListResult struct {
	Transactions  []*model.Transaction `json:"transactions"`
	ReturnedCount int                  `json:"returned_count"`
}

// List returns stored transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string, input ListInput) (*ListResult, error) {
	filter := repository.TransactionFilter{
		Limit:     input.Limit,
		Offset:    input.Offset,
		AccountID: input.AccountID,
	}

	if input.StartDate != "" {
		t, err := time.Parse(dateLayout, input.StartDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		filter.StartDate = &t
	}
	if input.EndDate != "" {
		t, err := time.Parse(dateLayout, input.EndDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		filter.EndDate = &t
	}

	txs, err := s.repo.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Transactions: txs, ReturnedCount: len(txs)}, nil
}

// ListByChannel returns the user's transactions for one payment channel.
func (s *TransactionService) ListByChannel(ctx context.Context, userID, channel string) ([]*model.Transaction, error) {
	txs, err := s.repo.ListTransactionsByChannel(ctx, userID, channel)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrTransactionNotFound
	}
	return txs, nil
}

// Get returns one transaction owned by the user.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*model.Transaction, error) {
	tx, err := s.repo.GetTransactionByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Summary aggregates the user's stored transactions.
func (s *TransactionService) Summary(ctx context.Context, userID string) (*repository.TransactionSummary, error) {
	return s.repo.GetTransactionSummary(ctx, userID)
}

// Delete removes one transaction owned by the user.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	return nil
}

// DeleteAll removes every transaction for the user.
func (s *TransactionService) DeleteAll(ctx context.Context, userID string) error {
	_, err := s.repo.DeleteTransactionsByUser(ctx, userID)
	return err
}

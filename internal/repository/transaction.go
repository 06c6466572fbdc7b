package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/billax/billax/internal/model"
)

// ErrTransactionNotFound is returned when a transaction lookup matches nothing.
var ErrTransactionNotFound = errors.New("transaction not found")

const transactionColumns = `id, plaid_transaction_id, account_id, user_id, name, amount,
	date, authorized_date,
	COALESCE(merchant_name, ''), COALESCE(merchant_entity_id, ''),
	COALESCE(logo_url, ''), COALESCE(website, ''),
	COALESCE(category_primary, ''), COALESCE(category_detailed, ''),
	COALESCE(category_confidence, ''), categories,
	COALESCE(payment_channel, ''), pending,
	COALESCE(location_address, ''), COALESCE(location_city, ''),
	COALESCE(location_region, ''), COALESCE(location_postal_code, ''),
	COALESCE(location_country, ''), location_lat, location_lon,
	created_at, updated_at`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.PlaidTransactionID,
		&t.AccountID,
		&t.UserID,
		&t.Name,
		&t.Amount,
		&t.Date,
		&t.AuthorizedDate,
		&t.MerchantName,
		&t.MerchantEntityID,
		&t.LogoURL,
		&t.Website,
		&t.CategoryPrimary,
		&t.CategoryDetailed,
		&t.CategoryConfidence,
		pq.Array(&t.Categories),
		&t.PaymentChannel,
		&t.Pending,
		&t.Location.Address,
		&t.Location.City,
		&t.Location.Region,
		&t.Location.PostalCode,
		&t.Location.Country,
		&t.Location.Lat,
		&t.Location.Lon,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]*model.Transaction, error) {
	defer rows.Close()

	var txs []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// UpsertTransaction inserts a transaction or refreshes a previously synced
// one (amount, pending state and categorization can change on Plaid's side).
func (r *Repository) UpsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, plaid_transaction_id, account_id, user_id, name, amount,
			date, authorized_date, merchant_name, merchant_entity_id, logo_url, website,
			category_primary, category_detailed, category_confidence, categories,
			payment_channel, pending,
			location_address, location_city, location_region, location_postal_code,
			location_country, location_lat, location_lon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''),
			NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''),
			NULLIF($15, ''), $16, NULLIF($17, ''), $18,
			NULLIF($19, ''), NULLIF($20, ''), NULLIF($21, ''), NULLIF($22, ''),
			NULLIF($23, ''), $24, $25, $26, $27)
		ON CONFLICT (plaid_transaction_id) DO UPDATE SET
			name = EXCLUDED.name,
			amount = EXCLUDED.amount,
			date = EXCLUDED.date,
			authorized_date = EXCLUDED.authorized_date,
			merchant_name = EXCLUDED.merchant_name,
			category_primary = EXCLUDED.category_primary,
			category_detailed = EXCLUDED.category_detailed,
			category_confidence = EXCLUDED.category_confidence,
			categories = EXCLUDED.categories,
			payment_channel = EXCLUDED.payment_channel,
			pending = EXCLUDED.pending,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.PlaidTransactionID,
		t.AccountID,
		t.UserID,
		t.Name,
		t.Amount,
		t.Date,
		t.AuthorizedDate,
		t.MerchantName,
		t.MerchantEntityID,
		t.LogoURL,
		t.Website,
		t.CategoryPrimary,
		t.CategoryDetailed,
		t.CategoryConfidence,
		pq.Array(t.Categories),
		t.PaymentChannel,
		t.Pending,
		t.Location.Address,
		t.Location.City,
		t.Location.Region,
		t.Location.PostalCode,
		t.Location.Country,
		t.Location.Lat,
		t.Location.Lon,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

// TransactionFilter narrows ListTransactions results.
type TransactionFilter struct {
	Limit     int
	Offset    int
	StartDate *time.Time
	EndDate   *time.Time
	// AccountID filters by Plaid account identifier.
	AccountID string
}

// ListTransactions returns the user's transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	query += " ORDER BY date DESC, id DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListTransactionsByChannel returns the user's transactions for one payment
// channel (online, in store, other).
func (r *Repository) ListTransactionsByChannel(ctx context.Context, userID, channel string) ([]*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1 AND payment_channel = $2
		ORDER BY date DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by channel: %w", err)
	}
	return collectTransactions(rows)
}

// GetTransactionByID retrieves a single transaction scoped to its owner.
func (r *Repository) GetTransactionByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 AND id = $2`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// TransactionSummary aggregates the user's synced transactions.
type TransactionSummary struct {
	Count         int64   `json:"count"`
	TotalSpent    float64 `json:"total_spent"`
	TotalReceived float64 `json:"total_received"`
	Net           float64 `json:"net"`
	PendingCount  int64   `json:"pending_count"`
}

// GetTransactionSummary computes spend/income aggregates in SQL.
// Plaid reports outflows as positive amounts.
func (r *Repository) GetTransactionSummary(ctx context.Context, userID string) (*TransactionSummary, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0),
			COALESCE(-SUM(amount) FILTER (WHERE amount < 0), 0),
			COUNT(*) FILTER (WHERE pending)
		FROM transactions
		WHERE user_id = $1
	`

	var s TransactionSummary
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.Count,
		&s.TotalSpent,
		&s.TotalReceived,
		&s.PendingCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	s.Net = s.TotalReceived - s.TotalSpent
	return &s, nil
}

// DeleteTransaction removes a single transaction owned by the user.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// DeleteTransactionsByUser removes all of the user's transactions.
func (r *Repository) DeleteTransactionsByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/billax/billax/internal/model"
)

// ErrAccountNotFound is returned when an account lookup matches nothing.
var ErrAccountNotFound = errors.New("account not found")

const accountColumns = `id, user_id, plaid_account_id, name, type, subtype, mask,
	current_balance, available_balance, credit_limit, currency_code, is_active,
	created_at, updated_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.PlaidAccountID,
		&a.Name,
		&a.Type,
		&a.Subtype,
		&a.Mask,
		&a.CurrentBalance,
		&a.AvailableBalance,
		&a.Limit,
		&a.CurrencyCode,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]*model.Account, error) {
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpsertAccount inserts an account or refreshes its balances when the
// Plaid account is already known.
func (r *Repository) UpsertAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, plaid_account_id, name, type, subtype, mask,
			current_balance, available_balance, credit_limit, currency_code, is_active,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (plaid_account_id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			subtype = EXCLUDED.subtype,
			mask = EXCLUDED.mask,
			current_balance = EXCLUDED.current_balance,
			available_balance = EXCLUDED.available_balance,
			credit_limit = EXCLUDED.credit_limit,
			currency_code = EXCLUDED.currency_code,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.PlaidAccountID,
		account.Name,
		account.Type,
		account.Subtype,
		account.Mask,
		account.CurrentBalance,
		account.AvailableBalance,
		account.Limit,
		account.CurrencyCode,
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// ListAccountsByUser returns all accounts belonging to a user.
func (r *Repository) ListAccountsByUser(ctx context.Context, userID string) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return collectAccounts(rows)
}

// ListAccountsByType returns the user's accounts of a given type.
func (r *Repository) ListAccountsByType(ctx context.Context, userID, accountType string) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND type = $2 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID, accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by type: %w", err)
	}
	return collectAccounts(rows)
}

// GetAccountByID retrieves a single account scoped to its owner.
func (r *Repository) GetAccountByID(ctx context.Context, userID, accountID string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND id = $2`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, userID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// DeleteAccount removes a single account owned by the user.
func (r *Repository) DeleteAccount(ctx context.Context, userID, accountID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1 AND id = $2`, userID, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DeleteAccountsByUser removes all accounts for a user. Used when the user
// disconnects Plaid.
func (r *Repository) DeleteAccountsByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete accounts: %w", err)
	}
	return tag.RowsAffected(), nil
}

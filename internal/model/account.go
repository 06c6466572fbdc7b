package model

import "time"

// Account types reported by Plaid.
const (
	AccountTypeDepository = "depository"
	AccountTypeCredit     = "credit"
	AccountTypeLoan       = "loan"
	AccountTypeInvestment = "investment"
)

// Account represents a bank account linked through Plaid.
// Balances are kept as float64; the database column is NUMERIC(15,2).
type Account struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	PlaidAccountID   string    `json:"plaid_account_id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Subtype          string    `json:"subtype"`
	Mask             string    `json:"mask"`
	CurrentBalance   *float64  `json:"current_balance,omitempty"`
	AvailableBalance *float64  `json:"available_balance,omitempty"`
	Limit            *float64  `json:"limit,omitempty"`
	CurrencyCode     string    `json:"currency_code"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsCredit returns true for credit accounts, where the current balance
// represents debt rather than available funds.
func (a *Account) IsCredit() bool {
	return a.Type == AccountTypeCredit
}

// SpendableBalance returns the balance that counts toward the user's funds:
// available balance when known, otherwise the current balance.
func (a *Account) SpendableBalance() float64 {
	if a.AvailableBalance != nil {
		return *a.AvailableBalance
	}
	if a.CurrentBalance != nil {
		return *a.CurrentBalance
	}
	return 0
}

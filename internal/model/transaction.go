package model

import "time"

// Transaction represents a bank transaction synced from Plaid.
// AccountID holds the Plaid account identifier, not the local account row ID.
type Transaction struct {
	ID                 string     `json:"id"`
	PlaidTransactionID string     `json:"plaid_transaction_id"`
	AccountID          string     `json:"account_id"`
	UserID             string     `json:"user_id"`
	Name               string     `json:"name"`
	// Amount follows Plaid's sign convention: positive for money leaving
	// the account, negative for money coming in.
	Amount         float64    `json:"amount"`
	Date           time.Time  `json:"date"`
	AuthorizedDate *time.Time `json:"authorized_date,omitempty"`

	MerchantName     string `json:"merchant_name,omitempty"`
	MerchantEntityID string `json:"merchant_entity_id,omitempty"`
	LogoURL          string `json:"logo_url,omitempty"`
	Website          string `json:"website,omitempty"`

	CategoryPrimary    string   `json:"category_primary,omitempty"`
	CategoryDetailed   string   `json:"category_detailed,omitempty"`
	CategoryConfidence string   `json:"category_confidence,omitempty"`
	Categories         []string `json:"categories,omitempty"`

	PaymentChannel string `json:"payment_channel,omitempty"`
	Pending        bool   `json:"pending"`

	Location TransactionLocation `json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransactionLocation holds the merchant location data Plaid reports.
type TransactionLocation struct {
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	Region     string   `json:"region,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Country    string   `json:"country,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// IsOutflow returns true if money left the account.
func (t *Transaction) IsOutflow() bool {
	return t.Amount > 0
}

// DisplayName prefers the merchant name over the raw transaction name.
func (t *Transaction) DisplayName() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Name
}

package dto

import (
	"time"

	"github.com/billax/billax/internal/model"
)

// AccountResponse represents a bank account in API responses.
type AccountResponse struct {
	ID               string    `json:"id"`
	PlaidAccountID   string    `json:"plaid_account_id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Subtype          string    `json:"subtype,omitempty"`
	Mask             string    `json:"mask,omitempty"`
	CurrentBalance   *float64  `json:"current_balance,omitempty"`
	AvailableBalance *float64  `json:"available_balance,omitempty"`
	Limit            *float64  `json:"limit,omitempty"`
	CurrencyCode     string    `json:"currency_code"`
	IsActive         bool      `json:"is_active"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AccountListResponse represents a list of accounts.
type AccountListResponse struct {
	Data  []AccountResponse `json:"data"`
	Count int               `json:"count"`
}

// ToAccountResponse converts an Account model to AccountResponse DTO.
func ToAccountResponse(a *model.Account) AccountResponse {
	return AccountResponse{
		ID:               a.ID,
		PlaidAccountID:   a.PlaidAccountID,
		Name:             a.Name,
		Type:             a.Type,
		Subtype:          a.Subtype,
		Mask:             a.Mask,
		CurrentBalance:   a.CurrentBalance,
		AvailableBalance: a.AvailableBalance,
		Limit:            a.Limit,
		CurrencyCode:     a.CurrencyCode,
		IsActive:         a.IsActive,
		UpdatedAt:        a.UpdatedAt,
	}
}

// ToAccountListResponse converts a slice of Account models.
func ToAccountListResponse(accounts []*model.Account) AccountListResponse {
	data := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		data[i] = ToAccountResponse(a)
	}
	return AccountListResponse{Data: data, Count: len(data)}
}

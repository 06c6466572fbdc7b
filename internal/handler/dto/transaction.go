package dto

import (
	"time"

	"github.com/billax/billax/internal/model"
)

// SyncTransactionsRequest represents the request body for a transaction
// sync. Dates are YYYY-MM-DD; both optional.
type SyncTransactionsRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID              string   `json:"id"`
	AccountID       string   `json:"account_id"`
	Name            string   `json:"name"`
	MerchantName    string   `json:"merchant_name,omitempty"`
	Amount          float64  `json:"amount"`
	Date            string   `json:"date"`
	Pending         bool     `json:"pending"`
	PaymentChannel  string   `json:"payment_channel,omitempty"`
	CategoryPrimary string   `json:"category_primary,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	City            string   `json:"city,omitempty"`
	Region          string   `json:"region,omitempty"`
	Country         string   `json:"country,omitempty"`
}

// TransactionListResponse represents a page of transactions.
type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Count int                   `json:"count"`
}

// ToTransactionResponse converts a Transaction model to a DTO.
func ToTransactionResponse(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Name:            t.Name,
		MerchantName:    t.MerchantName,
		Amount:          t.Amount,
		Date:            t.Date.Format(time.DateOnly),
		Pending:         t.Pending,
		PaymentChannel:  t.PaymentChannel,
		CategoryPrimary: t.CategoryPrimary,
		Categories:      t.Categories,
		City:            t.Location.City,
		Region:          t.Location.Region,
		Country:         t.Location.Country,
	}
}

// ToTransactionListResponse converts a slice of Transaction models.
func ToTransactionListResponse(transactions []*model.Transaction) TransactionListResponse {
	data := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		data[i] = ToTransactionResponse(t)
	}
	return TransactionListResponse{Data: data, Count: len(data)}
}

package service

import (
	"errors"
	"testing"
	"time"

	"github.com/billax/billax/internal/plaid"
)

func TestResolveSyncWindow_Defaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	start, end, err := resolveSyncWindow(SyncInput{}, now)
	if err != nil {
		t.Fatalf("resolveSyncWindow() error = %v", err)
	}
	if !end.Equal(now) {
		t.Errorf("end = %v, want now", end)
	}
	if got := end.Sub(start); got != 90*24*time.Hour {
		t.Errorf("window = %v, want 90 days", got)
	}
}

func TestResolveSyncWindow_Explicit(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	start, end, err := resolveSyncWindow(SyncInput{StartDate: "2024-03-01", EndDate: "2024-03-31"}, now)
	if err != nil {
		t.Fatalf("resolveSyncWindow() error = %v", err)
	}
	if start.Format(dateLayout) != "2024-03-01" || end.Format(dateLayout) != "2024-03-31" {
		t.Errorf("window = %v..%v", start, end)
	}
}

func TestResolveSyncWindow_Invalid(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name  string
		input SyncInput
	}{
		{"bad start format", SyncInput{StartDate: "01-03-2024"}},
		{"bad end format", SyncInput{EndDate: "yesterday"}},
		{"start after end", SyncInput{StartDate: "2024-06-01", EndDate: "2024-03-01"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, _, err := resolveSyncWindow(tt.input, now); !errors.Is(err, ErrInvalidDateRange) {
				t.Errorf("resolveSyncWindow() error = %v, want ErrInvalidDateRange", err)
			}
		})
	}
}

func TestTransactionFromPlaid(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	pt := plaid.Transaction{
		TransactionID:  "tx-1",
		AccountID:      "acc-1",
		Name:           "COFFEE SHOP",
		MerchantName:   "Coffee Shop",
		Amount:         4.5,
		Date:           "2024-05-30",
		Pending:        true,
		PaymentChannel: "in store",
		Category:       []string{"Food and Drink", "Coffee"},
		Location:       plaid.Location{City: "Austin", Region: "TX"},
	}

	tx, err := transactionFromPlaid(pt, "user-1", now)
	if err != nil {
		t.Fatalf("transactionFromPlaid() error = %v", err)
	}

	if tx.PlaidTransactionID != "tx-1" || tx.AccountID != "acc-1" || tx.UserID != "user-1" {
		t.Errorf("identifiers wrong: %+v", tx)
	}
	if tx.Date.Format(dateLayout) != "2024-05-30" {
		t.Errorf("date = %v", tx.Date)
	}
	if tx.CategoryPrimary != "Food and Drink" {
		t.Errorf("CategoryPrimary = %q", tx.CategoryPrimary)
	}
	if len(tx.Categories) != 2 {
		t.Errorf("Categories = %v", tx.Categories)
	}
	if !tx.Pending {
		t.Error("pending flag lost")
	}
	if tx.Location.City != "Austin" {
		t.Errorf("location = %+v", tx.Location)
	}
	if tx.ID == "" {
		t.Error("ID should be generated")
	}
}

func TestTransactionFromPlaid_BadDate(t *testing.T) {
	t.Parallel()

	if _, err := transactionFromPlaid(plaid.Transaction{Date: "not-a-date"}, "user-1", time.Now()); err == nil {
		t.Error("transactionFromPlaid() should reject a malformed date")
	}
}

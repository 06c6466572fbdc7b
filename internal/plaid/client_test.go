package plaid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("client-id", "secret", "sandbox", testLogger(), WithBaseURL(srv.URL)), srv
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func TestNewClient_Environments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"sandbox", sandboxURL},
		{"production", productionURL},
		{"Production", productionURL},
		{"development", sandboxURL},
		{"", sandboxURL},
	}

	for _, tt := range tests {
		c := NewClient("id", "secret", tt.env, testLogger())
		if c.baseURL != tt.want {
			t.Errorf("environment %q: baseURL = %s, want %s", tt.env, c.baseURL, tt.want)
		}
	}
}

func TestCreateLinkToken(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/link/token/create" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["client_id"] != "client-id" || body["secret"] != "secret" {
			t.Error("credentials should be injected into the request body")
		}
		user, _ := body["user"].(map[string]any)
		if user["client_user_id"] != "user-1" {
			t.Errorf("unexpected client_user_id: %v", user["client_user_id"])
		}
		_, _ = w.Write([]byte(`{"link_token":"link-sandbox-abc"}`))
	})

	got, err := client.CreateLinkToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CreateLinkToken() error = %v", err)
	}
	if got != "link-sandbox-abc" {
		t.Errorf("CreateLinkToken() = %q", got)
	}
}

func TestCreateSandboxPublicToken(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sandbox/public_token/create" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["institution_id"] != SandboxInstitutionID {
			t.Errorf("unexpected institution_id: %v", body["institution_id"])
		}
		_, _ = w.Write([]byte(`{"public_token":"public-sandbox-xyz"}`))
	})

	got, err := client.CreateSandboxPublicToken(context.Background())
	if err != nil {
		t.Fatalf("CreateSandboxPublicToken() error = %v", err)
	}
	if got != "public-sandbox-xyz" {
		t.Errorf("CreateSandboxPublicToken() = %q", got)
	}
}

func TestExchangePublicToken(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item/public_token/exchange" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["public_token"] != "public-sandbox-xyz" {
			t.Errorf("unexpected public_token: %v", body["public_token"])
		}
		_, _ = w.Write([]byte(`{"access_token":"access-sandbox-123","item_id":"item-1"}`))
	})

	got, err := client.ExchangePublicToken(context.Background(), "public-sandbox-xyz")
	if err != nil {
		t.Fatalf("ExchangePublicToken() error = %v", err)
	}
	if got != "access-sandbox-123" {
		t.Errorf("ExchangePublicToken() = %q", got)
	}
}

func TestExchangePublicToken_APIError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_type":"INVALID_INPUT","error_code":"INVALID_PUBLIC_TOKEN","error_message":"provided public token is invalid"}`))
	})

	_, err := client.ExchangePublicToken(context.Background(), "bogus")
	if !errors.Is(err, ErrTokenExchange) {
		t.Errorf("error should wrap ErrTokenExchange, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should carry *APIError, got %v", err)
	}
	if apiErr.ErrorCode != "INVALID_PUBLIC_TOKEN" {
		t.Errorf("unexpected error code: %s", apiErr.ErrorCode)
	}
}

func TestGetAccounts(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"accounts":[
			{"account_id":"acc-1","name":"Checking","mask":"0000","type":"depository","subtype":"checking","balances":{"available":100.5,"current":110.25,"iso_currency_code":"USD"}},
			{"account_id":"acc-2","name":"Credit Card","mask":"3333","type":"credit","subtype":"credit card","balances":{"current":410,"limit":2000,"iso_currency_code":"USD"}}
		]}`))
	})

	accounts, err := client.GetAccounts(context.Background(), "access-token")
	if err != nil {
		t.Fatalf("GetAccounts() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].AccountID != "acc-1" || *accounts[0].Balances.Available != 100.5 {
		t.Errorf("unexpected first account: %+v", accounts[0])
	}
	if accounts[1].Balances.Available != nil {
		t.Error("credit account should have nil available balance")
	}
	if *accounts[1].Balances.Limit != 2000 {
		t.Errorf("unexpected credit limit: %+v", accounts[1].Balances)
	}
}

func TestGetTransactions_Pagination(t *testing.T) {
	t.Parallel()

	const total = 150
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		opts, _ := body["options"].(map[string]any)
		offset := int(opts["offset"].(float64))
		count := int(opts["count"].(float64))

		var txs []Transaction
		for i := offset; i < offset+count && i < total; i++ {
			txs = append(txs, Transaction{
				TransactionID: fmt.Sprintf("tx-%d", i),
				AccountID:     "acc-1",
				Amount:        float64(i),
				Date:          "2024-05-01",
			})
		}
		resp := map[string]any{
			"accounts":           []Account{{AccountID: "acc-1"}},
			"transactions":       txs,
			"total_transactions": total,
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	result, err := client.GetTransactions(context.Background(), "access-token", "2024-03-01", "2024-06-01", 0)
	if err != nil {
		t.Fatalf("GetTransactions() error = %v", err)
	}
	if len(result.Transactions) != total {
		t.Errorf("expected %d transactions, got %d", total, len(result.Transactions))
	}
	if result.TotalTransactions != total {
		t.Errorf("TotalTransactions = %d, want %d", result.TotalTransactions, total)
	}
	if result.Transactions[100].TransactionID != "tx-100" {
		t.Errorf("pagination order broken: %s", result.Transactions[100].TransactionID)
	}
}

func TestGetTransactions_MaxCap(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		opts, _ := body["options"].(map[string]any)
		count := int(opts["count"].(float64))
		if count > 30 {
			t.Errorf("count should be capped at the remaining max, got %d", count)
		}

		var txs []Transaction
		for i := 0; i < count; i++ {
			txs = append(txs, Transaction{TransactionID: fmt.Sprintf("tx-%d", i)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transactions":       txs,
			"total_transactions": 500,
		})
	})

	result, err := client.GetTransactions(context.Background(), "access-token", "2024-03-01", "2024-06-01", 30)
	if err != nil {
		t.Fatalf("GetTransactions() error = %v", err)
	}
	if len(result.Transactions) != 30 {
		t.Errorf("expected 30 transactions, got %d", len(result.Transactions))
	}
}

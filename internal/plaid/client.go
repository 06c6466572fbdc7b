// Package plaid implements a minimal client for the Plaid REST API covering
// the Link flow and account/transaction retrieval.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	sandboxURL    = "https://sandbox.plaid.com"
	productionURL = "https://production.plaid.com"

	// SandboxInstitutionID is Plaid's standard test institution
	// (First Platypus Bank).
	SandboxInstitutionID = "ins_109508"

	// pageSize is the Plaid maximum for /transactions/get.
	pageSize = 100

	// ClientTimeout is the total request timeout.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
)

// Errors the handlers map to HTTP status codes.
var (
	ErrTokenCreate   = errors.New("plaid link token creation failed")
	ErrTokenExchange = errors.New("plaid token exchange failed")
	ErrDataSync      = errors.New("plaid data retrieval failed")
)

// APIError is an error body returned by Plaid.
type APIError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid: %s/%s: %s", e.ErrorType, e.ErrorCode, e.ErrorMessage)
}

// Client talks to the Plaid API. Credentials are injected into every
// request body per Plaid's authentication model.
type Client struct {
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// NewClient creates a Plaid client for the given environment. Unknown
// environments (including "development") fall back to sandbox.
func NewClient(clientID, secret, environment string, logger *slog.Logger, opts ...Option) *Client {
	baseURL := sandboxURL
	if strings.EqualFold(environment, "production") {
		baseURL = productionURL
	}

	c := &Client{
		clientID: clientID,
		secret:   secret,
		baseURL:  baseURL,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: ClientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post sends a JSON request to a Plaid endpoint and decodes the response
// into dest. Plaid error bodies are surfaced as *APIError.
func (c *Client) post(ctx context.Context, path string, body map[string]any, dest any) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("plaid request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("plaid request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.ErrorCode != "" {
			return &apiErr
		}
		return fmt.Errorf("plaid: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateLinkToken creates a link_token to initialize the Plaid Link flow
// for the given user.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	var out struct {
		LinkToken string `json:"link_token"`
	}
	err := c.post(ctx, "/link/token/create", map[string]any{
		"client_name":   "Billax Finance",
		"language":      "en",
		"country_codes": []string{"US"},
		"user":          map[string]any{"client_user_id": userID},
		"products":      []string{"transactions", "identity", "investments", "liabilities"},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenCreate, err)
	}
	if out.LinkToken == "" {
		return "", fmt.Errorf("%w: empty link_token", ErrTokenCreate)
	}
	return out.LinkToken, nil
}

// CreateSandboxPublicToken generates a public_token against the sandbox
// test institution, bypassing the interactive Link flow.
func (c *Client) CreateSandboxPublicToken(ctx context.Context) (string, error) {
	var out struct {
		PublicToken string `json:"public_token"`
	}
	err := c.post(ctx, "/sandbox/public_token/create", map[string]any{
		"institution_id":   SandboxInstitutionID,
		"initial_products": []string{"transactions"},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenCreate, err)
	}
	if out.PublicToken == "" {
		return "", fmt.Errorf("%w: empty public_token", ErrTokenCreate)
	}
	return out.PublicToken, nil
}

// ExchangePublicToken exchanges a short-lived public_token for a permanent
// access_token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.post(ctx, "/item/public_token/exchange", map[string]any{
		"public_token": publicToken,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrTokenExchange)
	}
	return out.AccessToken, nil
}

// GetAccounts retrieves the accounts attached to an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var out struct {
		Accounts []Account `json:"accounts"`
	}
	err := c.post(ctx, "/accounts/get", map[string]any{
		"access_token": accessToken,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataSync, err)
	}
	return out.Accounts, nil
}

// GetTransactions walks /transactions/get pages until the requested range
// is exhausted or max transactions have been collected. Dates are
// YYYY-MM-DD; max <= 0 means no cap.
func (c *Client) GetTransactions(ctx context.Context, accessToken, startDate, endDate string, max int) (*TransactionsResult, error) {
	result := &TransactionsResult{}
	offset := 0

	for {
		count := pageSize
		if max > 0 {
			remaining := max - len(result.Transactions)
			if remaining <= 0 {
				break
			}
			if remaining < count {
				count = remaining
			}
		}

		var page struct {
			Accounts          []Account     `json:"accounts"`
			Transactions      []Transaction `json:"transactions"`
			TotalTransactions int           `json:"total_transactions"`
		}
		err := c.post(ctx, "/transactions/get", map[string]any{
			"access_token": accessToken,
			"start_date":   startDate,
			"end_date":     endDate,
			"options": map[string]any{
				"count":  count,
				"offset": offset,
			},
		}, &page)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataSync, err)
		}

		result.Accounts = page.Accounts
		result.Transactions = append(result.Transactions, page.Transactions...)
		offset += len(page.Transactions)

		if len(page.Transactions) == 0 || offset >= page.TotalTransactions {
			break
		}
	}

	result.TotalTransactions = len(result.Transactions)
	return result, nil
}

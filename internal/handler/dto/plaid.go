package dto

// ExchangeTokenRequest represents the request body for exchanging a
// Plaid public token after the Link flow completes.
type ExchangeTokenRequest struct {
	PublicToken string `json:"public_token"`
}

// LinkTokenResponse carries a freshly created Plaid link token.
type LinkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// PublicTokenResponse carries a sandbox-generated public token.
type PublicTokenResponse struct {
	PublicToken string `json:"public_token"`
}

// PlaidStatusResponse reports whether the user has a bank connected.
type PlaidStatusResponse struct {
	Connected bool `json:"connected"`
}

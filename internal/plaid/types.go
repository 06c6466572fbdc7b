package plaid

// Balances carries the monetary state of an account. Pointer fields are
// null when the institution does not report them.
type Balances struct {
	Available       *float64 `json:"available"`
	Current         *float64 `json:"current"`
	Limit           *float64 `json:"limit"`
	ISOCurrencyCode string   `json:"iso_currency_code"`
}

// Account is one account attached to an item.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// Location is the merchant location attached to a transaction.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Transaction is one transaction as returned by /transactions/get.
// Amount is positive for outflows and negative for inflows.
type Transaction struct {
	TransactionID   string   `json:"transaction_id"`
	AccountID       string   `json:"account_id"`
	Name            string   `json:"name"`
	MerchantName    string   `json:"merchant_name"`
	Amount          float64  `json:"amount"`
	Date            string   `json:"date"`
	Pending         bool     `json:"pending"`
	PaymentChannel  string   `json:"payment_channel"`
	Category        []string `json:"category"`
	ISOCurrencyCode string   `json:"iso_currency_code"`
	Location        Location `json:"location"`
}

// TransactionsResult is the aggregated result of a paginated
// /transactions/get walk.
type TransactionsResult struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
}

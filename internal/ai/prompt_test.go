package ai

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestBuildSystemPrompt_NoData(t *testing.T) {
	t.Parallel()

	prompt := BuildSystemPrompt(FinancialContext{Note: "no linked accounts"})

	if !strings.Contains(prompt, "link your bank accounts") {
		t.Error("No-data prompt should mention linking accounts")
	}
	if strings.Contains(prompt, "Bank Accounts:") {
		t.Error("No-data prompt should not include account sections")
	}
}

func TestBuildSystemPrompt_Balances(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		Timestamp: "2024-06-01 10:00:00",
		Accounts: []AccountSnapshot{
			{Name: "Checking", Mask: "1234", Type: "depository", AvailableBalance: floatPtr(1500.50)},
			{Name: "Visa", Mask: "5678", Type: "credit", CurrentBalance: floatPtr(400.25)},
		},
		Transactions: []TransactionSnapshot{
			{Name: "COFFEE SHOP*: ", Amount: 4.50, Date: "2024-05-30"},
		},
	}

	prompt := BuildSystemPrompt(fc)

	if !strings.Contains(prompt, "Total balance in deposit accounts: $1500.50") {
		t.Error("Prompt should total deposit balances")
	}
	if !strings.Contains(prompt, "Total credit card debt: $400.25") {
		t.Error("Prompt should report credit debt")
	}
	if !strings.Contains(prompt, "Net worth: $1100.25") {
		t.Error("Prompt should compute net worth")
	}
	if !strings.Contains(prompt, "- COFFEE SHOP: $4.50 on 2024-05-30") {
		t.Errorf("Transaction names should have trailing junk stripped, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "only one account") {
		t.Error("Multi-account context should not include the single-account instruction")
	}
}

func TestBuildSystemPrompt_SingleAccount(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		Timestamp: "2024-06-01 10:00:00",
		Accounts: []AccountSnapshot{
			{Name: "Checking", Type: "depository", AvailableBalance: floatPtr(100)},
		},
	}

	if !strings.Contains(BuildSystemPrompt(fc), "only one account") {
		t.Error("Single-account context should include the single-account instruction")
	}
}

func TestBuildSystemPrompt_AvailableFallsBackToCurrent(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		Accounts: []AccountSnapshot{
			{Name: "Savings", Type: "depository", CurrentBalance: floatPtr(250)},
		},
	}

	if !strings.Contains(BuildSystemPrompt(fc), "Total balance in deposit accounts: $250.00") {
		t.Error("Deposit accounts without available balance should use current balance")
	}
}

func TestCleanResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"markdown stripped", "Your **balance** is `$100` _today_", "Your balance is $100 today"},
		{"blank lines collapsed", "line one\n\n\n\nline two", "line one\nline two"},
		{"spaces collapsed", "too    many   spaces", "too many spaces"},
		{"trimmed", "  \n hello \n  ", "hello"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CleanResponse(tt.in); got != tt.want {
				t.Errorf("CleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFallbackResponse(t *testing.T) {
	t.Parallel()

	got := FallbackResponse("how much did I spend?")
	if !strings.Contains(got, "how much did I spend?") {
		t.Error("Fallback should echo the user's message")
	}
	if !strings.Contains(got, "OPENAI_API_KEY") {
		t.Error("Fallback should mention the missing configuration")
	}
}

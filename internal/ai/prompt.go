package ai

import (
	"fmt"
	"regexp"
	"strings"
)

// AccountSnapshot is the slice of account data exposed to the assistant.
type AccountSnapshot struct {
	Name             string   `json:"name"`
	Mask             string   `json:"mask"`
	Type             string   `json:"type"`
	AvailableBalance *float64 `json:"available_balance"`
	CurrentBalance   *float64 `json:"current_balance"`
}

// TransactionSnapshot is the slice of transaction data exposed to the
// assistant.
type TransactionSnapshot struct {
	Name         string  `json:"name"`
	MerchantName string  `json:"merchant_name"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
}

// FinancialContext is the snapshot of the user's finances fed into the
// system prompt. Note is set when no financial data is available.
type FinancialContext struct {
	Accounts          []AccountSnapshot     `json:"accounts"`
	Transactions      []TransactionSnapshot `json:"transactions"`
	Timestamp         string                `json:"timestamp"`
	SelectedAccountID string                `json:"selected_account_id,omitempty"`
	Note              string                `json:"note,omitempty"`
}

// noDataPrompt is used when the user has no linked accounts or context
// building failed.
const noDataPrompt = `You are a smart, friendly financial assistant. Right now I don't have access to your specific financial data, but I can help you with:

- General personal finance advice
- Explanations of financial products
- Saving and investment strategies
- Basic financial planning
- Questions about banking and finance

If you need specific information about your accounts or transactions, you will need to link your bank accounts first.`

var (
	trailingJunkRe = regexp.MustCompile(`[*/: ]+$`)
	blankLinesRe   = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe   = regexp.MustCompile(` +`)
)

// BuildSystemPrompt renders the financial context into the system prompt.
// Deposit accounts contribute their available balance, credit accounts their
// current balance as debt; the two are reported separately with net worth.
func BuildSystemPrompt(fc FinancialContext) string {
	if fc.Note != "" {
		return noDataPrompt
	}

	var totalDeposit, totalCredit float64
	var accountLines []string

	for _, a := range fc.Accounts {
		var balanceStr string
		if strings.EqualFold(a.Type, "credit") {
			if a.CurrentBalance != nil {
				totalCredit += *a.CurrentBalance
				balanceStr = fmt.Sprintf("$%.2f (debt)", *a.CurrentBalance)
			} else {
				balanceStr = "N/A"
			}
		} else {
			balance := a.AvailableBalance
			if balance == nil {
				balance = a.CurrentBalance
			}
			if balance != nil {
				totalDeposit += *balance
				balanceStr = fmt.Sprintf("$%.2f", *balance)
			} else {
				balanceStr = "N/A"
			}
		}

		mask := a.Mask
		if mask == "" {
			mask = "XXXX"
		}
		line := fmt.Sprintf("- %s (%s): %s", a.Name, mask, balanceStr)
		if a.Type != "" {
			line += fmt.Sprintf(" (type: %s)", a.Type)
		}
		accountLines = append(accountLines, line)
	}

	var txLines []string
	for _, t := range fc.Transactions {
		name := t.MerchantName
		if name == "" {
			name = t.Name
		}
		if name == "" {
			name = "Transaction"
		}
		name = trailingJunkRe.ReplaceAllString(name, "")
		txLines = append(txLines, fmt.Sprintf("- %s: $%.2f on %s", name, t.Amount, t.Date))
	}

	accountsText := "No accounts available"
	if len(accountLines) > 0 {
		accountsText = strings.Join(accountLines, "\n")
	}
	txText := "No recent transactions"
	if len(txLines) > 0 {
		txText = strings.Join(txLines, "\n")
	}

	balanceSummary := fmt.Sprintf("Total balance in deposit accounts: $%.2f", totalDeposit)
	if totalCredit > 0 {
		balanceSummary += fmt.Sprintf("\nTotal credit card debt: $%.2f", totalCredit)
		balanceSummary += fmt.Sprintf("\nNet worth: $%.2f", totalDeposit-totalCredit)
	}

	singleAccountNote := ""
	if len(fc.Accounts) == 1 {
		singleAccountNote = "\n\nIMPORTANT: There is only one account in the context. If the user asks for their balance, answer with that account's balance only, not a total across accounts."
	}

	return fmt.Sprintf(`You are a smart financial assistant with access to the user's current financial data.

### Available Information:
Query date: %s

%s

Bank Accounts:
%s

Recent Transactions:
%s

### Instructions:
- Give accurate, useful answers based on this information
- If the user asks for their total balance, answer with the computed amount
- Distinguish deposit accounts (available money) from credit cards (debt)
- If you lack the information to answer something specific, say so clearly
- Keep a professional but friendly tone
- Offer financial insights and advice where appropriate
- Do NOT use markdown formatting with asterisks
- Use plain, direct formatting without special characters
- Always include amounts in currency format ($X.XX)
- Answer clearly and concisely
- If you list items, separate them with commas or periods%s`,
		fc.Timestamp, balanceSummary, accountsText, txText, singleAccountNote)
}

// CleanResponse normalizes the model's reply for plain-text display:
// markdown markers are stripped, whitespace collapsed, blank lines removed.
func CleanResponse(response string) string {
	if response == "" {
		return ""
	}

	response = blankLinesRe.ReplaceAllString(response, "\n\n")
	response = strings.TrimSpace(response)

	for _, marker := range []string{"**", "*", "`", "_"} {
		response = strings.ReplaceAll(response, marker, "")
	}

	response = multiSpaceRe.ReplaceAllString(response, " ")

	var lines []string
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// FallbackResponse is the canned reply used when no API key is configured.
func FallbackResponse(message string) string {
	return fmt.Sprintf("Hello! I received your message: '%s'. This is a test response because the OpenAI API is not configured. To enable the full AI assistant, set OPENAI_API_KEY in your environment.", message)
}

package domain

import "time"

// Account types for the chart of accounts.
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
	AccountTypeRevenue   = "revenue"
	AccountTypeExpense   = "expense"
)

// Account is one entry in a company's chart of accounts. AccountNumber is
// unique within the company.
type Account struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	AccountNumber string    `json:"account_number"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Subtype       string    `json:"subtype,omitempty"`
	Description   string    `json:"description,omitempty"`
	IsActive      bool      `json:"is_active"`
	Balance       int64     `json:"balance"` // minor currency units
	IsBankAccount bool      `json:"is_bank_account"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Transaction statuses.
const (
	TransactionStatusDraft  = "draft"
	TransactionStatusPosted = "posted"
	TransactionStatusVoided = "voided"
)

// Transaction is a double-entry journal transaction. A transaction is
// balanced when the sum of line debits equals the sum of line credits.
type Transaction struct {
	ID              string            `json:"id"`
	CompanyID       string            `json:"company_id"`
	TransactionDate time.Time         `json:"transaction_date"`
	ReferenceNumber string            `json:"reference_number,omitempty"`
	Description     string            `json:"description,omitempty"`
	Type            string            `json:"type"`
	Status          string            `json:"status"`
	Lines           []TransactionLine `json:"lines"`
	CreatedBy       string            `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// TransactionLine debits or credits a single account. Amounts are minor
// currency units; exactly one of Debit/Credit is expected to be non-zero.
type TransactionLine struct {
	AccountID   string `json:"account_id"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
	Description string `json:"description,omitempty"`
}

// Balanced reports whether debits equal credits across all lines.
func (t *Transaction) Balanced() bool {
	var debits, credits int64
	for _, l := range t.Lines {
		debits += l.Debit
		credits += l.Credit
	}
	return debits == credits
}

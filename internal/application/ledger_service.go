package application

import (
	"context"
	"fmt"

	"finbooks/internal/domain"
	"finbooks/internal/ports"

	"github.com/rs/zerolog"
)

// LedgerService manages the chart of accounts and double-entry journal
// transactions for a company.
type LedgerService struct {
	ledger ports.LedgerRepository
	clock  ports.Clock
	logger zerolog.Logger
}

// NewLedgerService creates the ledger service.
func NewLedgerService(ledger ports.LedgerRepository, clock ports.Clock, logger zerolog.Logger) *LedgerService {
	return &LedgerService{ledger: ledger, clock: clock, logger: logger}
}

// CreateAccount adds an entry to the company's chart of accounts. Account
// numbers are unique per company; the type must be one of the five account
// types.
func (s *LedgerService) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.AccountNumber == "" || account.Name == "" {
		return nil, fmt.Errorf("account number and name are required")
	}
	switch account.Type {
	case domain.AccountTypeAsset, domain.AccountTypeLiability, domain.AccountTypeEquity,
		domain.AccountTypeRevenue, domain.AccountTypeExpense:
	default:
		return nil, fmt.Errorf("invalid account type %q", account.Type)
	}

	account.IsActive = true
	if err := s.ledger.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns one account.
func (s *LedgerService) GetAccount(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	return s.ledger.FindAccount(ctx, companyID, accountID)
}

// ListAccounts returns the company's chart of accounts.
func (s *LedgerService) ListAccounts(ctx context.Context, companyID string) ([]*domain.Account, error) {
	return s.ledger.ListAccounts(ctx, companyID)
}

// UpdateAccount modifies an account's mutable fields.
func (s *LedgerService) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := s.ledger.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return s.ledger.FindAccount(ctx, account.CompanyID, account.ID)
}

// PostTransaction records a journal transaction and applies its lines to the
// affected account balances. Unbalanced transactions are rejected before
// anything is written.
func (s *LedgerService) PostTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if len(tx.Lines) < 2 {
		return nil, fmt.Errorf("a transaction needs at least two lines")
	}
	if !tx.Balanced() {
		return nil, domain.ErrUnbalancedTransaction
	}

	// Every referenced account must exist in this company before posting.
	accounts := make(map[string]*domain.Account, len(tx.Lines))
	for _, line := range tx.Lines {
		if _, ok := accounts[line.AccountID]; ok {
			continue
		}
		account, err := s.ledger.FindAccount(ctx, tx.CompanyID, line.AccountID)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", line.AccountID, err)
		}
		accounts[line.AccountID] = account
	}

	// One delta per account, applied atomically by the repository. A plain
	// read-modify-write here would let two concurrent posts erase each
	// other's balance change.
	deltas := make(map[string]int64, len(accounts))
	for _, line := range tx.Lines {
		deltas[line.AccountID] += signedAmount(accounts[line.AccountID].Type, line)
	}

	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = s.clock.Now()
	}
	tx.Status = domain.TransactionStatusPosted

	if err := s.ledger.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	for accountID, delta := range deltas {
		if err := s.ledger.ApplyBalanceDelta(ctx, tx.CompanyID, accountID, delta); err != nil {
			return nil, fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
		}
	}

	s.logger.Info().
		Str("company_id", tx.CompanyID).
		Str("transaction_id", tx.ID).
		Int("lines", len(tx.Lines)).
		Msg("Transaction posted")
	return tx, nil
}

// signedAmount converts a line to a balance delta. Debits increase asset and
// expense accounts; credits increase liability, equity and revenue accounts.
func signedAmount(accountType string, line domain.TransactionLine) int64 {
	switch accountType {
	case domain.AccountTypeAsset, domain.AccountTypeExpense:
		return line.Debit - line.Credit
	default:
		return line.Credit - line.Debit
	}
}

// GetTransaction returns one transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, companyID, txID string) (*domain.Transaction, error) {
	return s.ledger.FindTransaction(ctx, companyID, txID)
}

// ListTransactions returns the company's transactions, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, companyID string) ([]*domain.Transaction, error) {
	return s.ledger.ListTransactions(ctx, companyID)
}

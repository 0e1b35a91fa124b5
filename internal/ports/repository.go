package ports

import (
	"context"

	"finbooks/internal/domain"
)

// UserRepository persists users. Email is unique.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CompanyRepository persists companies and user memberships.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, m *domain.Membership) error
	FindMembership(ctx context.Context, userID, companyID string) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Company, error)
}

// LedgerRepository persists the chart of accounts and journal transactions.
// (company_id, account_number) is unique.
type LedgerRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	FindAccount(ctx context.Context, companyID, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, companyID string) ([]*domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) error

	// ApplyBalanceDelta atomically adds delta to an account's balance, so
	// concurrent postings never lose each other's updates.
	ApplyBalanceDelta(ctx context.Context, companyID, accountID string, delta int64) error

	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	FindTransaction(ctx context.Context, companyID, txID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, companyID string) ([]*domain.Transaction, error)
}

// InvoiceRepository persists invoices and bills. (company_id, number) is
// unique for each.
type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, inv *domain.Invoice) error
	FindInvoice(ctx context.Context, companyID, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, companyID string) ([]*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, inv *domain.Invoice) error

	CreateBill(ctx context.Context, bill *domain.Bill) error
	FindBill(ctx context.Context, companyID, billID string) (*domain.Bill, error)
	ListBills(ctx context.Context, companyID string) ([]*domain.Bill, error)
	UpdateBill(ctx context.Context, bill *domain.Bill) error
}

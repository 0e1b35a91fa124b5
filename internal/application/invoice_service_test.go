package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"finbooks/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvoiceRepo is an in-memory InvoiceRepository.
type fakeInvoiceRepo struct {
	mu       sync.Mutex
	nextID   int
	invoices map[string]*domain.Invoice
	bills    map[string]*domain.Bill
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: make(map[string]*domain.Invoice),
		bills:    make(map[string]*domain.Bill),
	}
}

func (r *fakeInvoiceRepo) CreateInvoice(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.CompanyID == inv.CompanyID && existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrAlreadyExists
		}
	}
	r.nextID++
	inv.ID = fmt.Sprintf("inv-%d", r.nextID)
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) FindInvoice(_ context.Context, companyID, invoiceID string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) ListInvoices(_ context.Context, companyID string) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) UpdateInvoice(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.invoices[inv.ID]
	if !ok || existing.CompanyID != inv.CompanyID {
		return domain.ErrNotFound
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) CreateBill(_ context.Context, bill *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bills {
		if existing.CompanyID == bill.CompanyID && existing.BillNumber == bill.BillNumber {
			return domain.ErrAlreadyExists
		}
	}
	r.nextID++
	bill.ID = fmt.Sprintf("bill-%d", r.nextID)
	cp := *bill
	r.bills[bill.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) FindBill(_ context.Context, companyID, billID string) (*domain.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bill, ok := r.bills[billID]
	if !ok || bill.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	cp := *bill
	return &cp, nil
}

func (r *fakeInvoiceRepo) ListBills(_ context.Context, companyID string) ([]*domain.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Bill
	for _, bill := range r.bills {
		if bill.CompanyID == companyID {
			cp := *bill
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) UpdateBill(_ context.Context, bill *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.bills[bill.ID]
	if !ok || existing.CompanyID != bill.CompanyID {
		return domain.ErrNotFound
	}
	cp := *bill
	r.bills[bill.ID] = &cp
	return nil
}

func newTestInvoiceService(t *testing.T) *InvoiceService {
	t.Helper()
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewInvoiceService(newFakeInvoiceRepo(), clock, zerolog.Nop())
}

func TestCreateInvoiceDefaultsAndValidation(t *testing.T) {
	svc := newTestInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), &domain.Invoice{
		CompanyID:     "company-1",
		CustomerName:  "Initech",
		InvoiceNumber: "INV-001",
		Subtotal:      10000,
		TaxAmount:     800,
		Total:         10800,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.False(t, inv.InvoiceDate.IsZero())

	// Mismatched total is rejected.
	_, err = svc.CreateInvoice(context.Background(), &domain.Invoice{
		CompanyID:     "company-1",
		CustomerName:  "Initech",
		InvoiceNumber: "INV-002",
		Subtotal:      10000,
		TaxAmount:     800,
		Total:         99999,
	})
	assert.Error(t, err)
}

func TestCreateInvoiceDuplicateNumber(t *testing.T) {
	svc := newTestInvoiceService(t)

	_, err := svc.CreateInvoice(context.Background(), &domain.Invoice{
		CompanyID:     "company-1",
		CustomerName:  "Initech",
		InvoiceNumber: "INV-001",
	})
	require.NoError(t, err)

	_, err = svc.CreateInvoice(context.Background(), &domain.Invoice{
		CompanyID:     "company-1",
		CustomerName:  "Hooli",
		InvoiceNumber: "INV-001",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	svc := newTestInvoiceService(t)

	inv, err := svc.CreateInvoice(context.Background(), &domain.Invoice{
		CompanyID:     "company-1",
		CustomerName:  "Initech",
		InvoiceNumber: "INV-001",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateInvoiceStatus(context.Background(), "company-1", inv.ID, domain.InvoiceStatusSent)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, updated.Status)

	_, err = svc.UpdateInvoiceStatus(context.Background(), "company-1", inv.ID, "bogus")
	assert.Error(t, err)

	// Other companies cannot touch the invoice.
	_, err = svc.UpdateInvoiceStatus(context.Background(), "company-2", inv.ID, domain.InvoiceStatusPaid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBillLifecycle(t *testing.T) {
	svc := newTestInvoiceService(t)

	bill, err := svc.CreateBill(context.Background(), &domain.Bill{
		CompanyID:  "company-1",
		VendorName: "Paper Co",
		BillNumber: "BILL-001",
		Subtotal:   5000,
		TaxAmount:  0,
		Total:      5000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusDraft, bill.Status)

	updated, err := svc.UpdateBillStatus(context.Background(), "company-1", bill.ID, domain.BillStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, updated.Status)

	_, err = svc.CreateBill(context.Background(), &domain.Bill{
		CompanyID:  "company-1",
		VendorName: "Paper Co",
		BillNumber: "BILL-001",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

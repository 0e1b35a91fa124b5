package application

import (
	"context"
	"fmt"

	"finbooks/internal/domain"
	"finbooks/internal/ports"

	"github.com/rs/zerolog"
)

// InvoiceService manages receivables and payables.
type InvoiceService struct {
	invoices ports.InvoiceRepository
	clock    ports.Clock
	logger   zerolog.Logger
}

// NewInvoiceService creates the invoice service.
func NewInvoiceService(invoices ports.InvoiceRepository, clock ports.Clock, logger zerolog.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, clock: clock, logger: logger}
}

// CreateInvoice records a new invoice. Invoice numbers are unique per
// company; the total must equal subtotal plus tax.
func (s *InvoiceService) CreateInvoice(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	if inv.InvoiceNumber == "" || inv.CustomerName == "" {
		return nil, fmt.Errorf("invoice number and customer name are required")
	}
	if inv.Total != inv.Subtotal+inv.TaxAmount {
		return nil, fmt.Errorf("invoice total does not match subtotal plus tax")
	}

	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = s.clock.Now()
	}
	if inv.Status == "" {
		inv.Status = domain.InvoiceStatusDraft
	}

	if err := s.invoices.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoice returns one invoice.
func (s *InvoiceService) GetInvoice(ctx context.Context, companyID, invoiceID string) (*domain.Invoice, error) {
	return s.invoices.FindInvoice(ctx, companyID, invoiceID)
}

// ListInvoices returns the company's invoices.
func (s *InvoiceService) ListInvoices(ctx context.Context, companyID string) ([]*domain.Invoice, error) {
	return s.invoices.ListInvoices(ctx, companyID)
}

// UpdateInvoiceStatus moves an invoice through its lifecycle.
func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, companyID, invoiceID, status string) (*domain.Invoice, error) {
	switch status {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusPaid, domain.InvoiceStatusVoid:
	default:
		return nil, fmt.Errorf("invalid invoice status %q", status)
	}

	inv, err := s.invoices.FindInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	inv.Status = status
	if err := s.invoices.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateBill records a new bill. Bill numbers are unique per company.
func (s *InvoiceService) CreateBill(ctx context.Context, bill *domain.Bill) (*domain.Bill, error) {
	if bill.BillNumber == "" || bill.VendorName == "" {
		return nil, fmt.Errorf("bill number and vendor name are required")
	}
	if bill.Total != bill.Subtotal+bill.TaxAmount {
		return nil, fmt.Errorf("bill total does not match subtotal plus tax")
	}

	if bill.BillDate.IsZero() {
		bill.BillDate = s.clock.Now()
	}
	if bill.Status == "" {
		bill.Status = domain.BillStatusDraft
	}

	if err := s.invoices.CreateBill(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// GetBill returns one bill.
func (s *InvoiceService) GetBill(ctx context.Context, companyID, billID string) (*domain.Bill, error) {
	return s.invoices.FindBill(ctx, companyID, billID)
}

// ListBills returns the company's bills.
func (s *InvoiceService) ListBills(ctx context.Context, companyID string) ([]*domain.Bill, error) {
	return s.invoices.ListBills(ctx, companyID)
}

// UpdateBillStatus moves a bill through its lifecycle.
func (s *InvoiceService) UpdateBillStatus(ctx context.Context, companyID, billID, status string) (*domain.Bill, error) {
	switch status {
	case domain.BillStatusDraft, domain.BillStatusReceived, domain.BillStatusPaid, domain.BillStatusVoid:
	default:
		return nil, fmt.Errorf("invalid bill status %q", status)
	}

	bill, err := s.invoices.FindBill(ctx, companyID, billID)
	if err != nil {
		return nil, err
	}

	bill.Status = status
	if err := s.invoices.UpdateBill(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

package domain

import "time"

// Invoice and bill statuses.
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
	InvoiceStatusVoid  = "void"

	BillStatusDraft    = "draft"
	BillStatusReceived = "received"
	BillStatusPaid     = "paid"
	BillStatusVoid     = "void"
)

// Invoice is a receivable issued to a customer. InvoiceNumber is unique
// within the company. Amounts are minor currency units.
type Invoice struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	CustomerName  string    `json:"customer_name"`
	TransactionID string    `json:"transaction_id,omitempty"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   time.Time `json:"invoice_date"`
	DueDate       time.Time `json:"due_date"`
	Subtotal      int64     `json:"subtotal"`
	TaxAmount     int64     `json:"tax_amount"`
	Total         int64     `json:"total"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Bill is a payable owed to a vendor. BillNumber is unique within the company.
type Bill struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	VendorName    string    `json:"vendor_name"`
	TransactionID string    `json:"transaction_id,omitempty"`
	BillNumber    string    `json:"bill_number"`
	BillDate      time.Time `json:"bill_date"`
	DueDate       time.Time `json:"due_date"`
	Subtotal      int64     `json:"subtotal"`
	TaxAmount     int64     `json:"tax_amount"`
	Total         int64     `json:"total"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

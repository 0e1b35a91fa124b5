package api

import (
	"net/http"

	"finbooks/internal/application"
	"finbooks/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// InvoiceHandlers serves invoices and bills under
// /api/v1/companies/{companyID}.
type InvoiceHandlers struct {
	invoices *application.InvoiceService
	logger   zerolog.Logger
}

// NewInvoiceHandlers creates the invoice handlers.
func NewInvoiceHandlers(invoices *application.InvoiceService, logger zerolog.Logger) *InvoiceHandlers {
	return &InvoiceHandlers{invoices: invoices, logger: logger}
}

type statusRequest struct {
	Status string `json:"status"`
}

// CreateInvoice handles POST .../invoices.
func (h *InvoiceHandlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv domain.Invoice
	if err := decodeBody(r, &inv); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	inv.CompanyID = domain.CompanyIDFromContext(r.Context())

	created, err := h.invoices.CreateInvoice(r.Context(), &inv)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListInvoices handles GET .../invoices.
func (h *InvoiceHandlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.ListInvoices(r.Context(), domain.CompanyIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if invoices == nil {
		invoices = []*domain.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

// GetInvoice handles GET .../invoices/{invoiceID}.
func (h *InvoiceHandlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.GetInvoice(r.Context(), domain.CompanyIDFromContext(r.Context()), chi.URLParam(r, "invoiceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// UpdateInvoiceStatus handles PUT .../invoices/{invoiceID}/status.
func (h *InvoiceHandlers) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	inv, err := h.invoices.UpdateInvoiceStatus(r.Context(), domain.CompanyIDFromContext(r.Context()), chi.URLParam(r, "invoiceID"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// CreateBill handles POST .../bills.
func (h *InvoiceHandlers) CreateBill(w http.ResponseWriter, r *http.Request) {
	var bill domain.Bill
	if err := decodeBody(r, &bill); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	bill.CompanyID = domain.CompanyIDFromContext(r.Context())

	created, err := h.invoices.CreateBill(r.Context(), &bill)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListBills handles GET .../bills.
func (h *InvoiceHandlers) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.invoices.ListBills(r.Context(), domain.CompanyIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if bills == nil {
		bills = []*domain.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

// GetBill handles GET .../bills/{billID}.
func (h *InvoiceHandlers) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.invoices.GetBill(r.Context(), domain.CompanyIDFromContext(r.Context()), chi.URLParam(r, "billID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// UpdateBillStatus handles PUT .../bills/{billID}/status.
func (h *InvoiceHandlers) UpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	bill, err := h.invoices.UpdateBillStatus(r.Context(), domain.CompanyIDFromContext(r.Context()), chi.URLParam(r, "billID"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

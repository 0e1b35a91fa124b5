package api

import (
	"net/http"

	"finbooks/internal/application"
	"finbooks/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// LedgerHandlers serves the chart of accounts and journal transactions.
// Routes are mounted under /api/v1/companies/{companyID}; membership is
// enforced by middleware before these run.
type LedgerHandlers struct {
	ledger *application.LedgerService
	logger zerolog.Logger
}

// NewLedgerHandlers creates the ledger handlers.
func NewLedgerHandlers(ledger *application.LedgerService, logger zerolog.Logger) *LedgerHandlers {
	return &LedgerHandlers{ledger: ledger, logger: logger}
}

// CreateAccount handles POST .../accounts.
func (h *LedgerHandlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var account domain.Account
	if err := decodeBody(r, &account); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	account.CompanyID = domain.CompanyIDFromContext(r.Context())

	created, err := h.ledger.CreateAccount(r.Context(), &account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListAccounts handles GET .../accounts.
func (h *LedgerHandlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ledger.ListAccounts(r.Context(), domain.CompanyIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// GetAccount handles GET .../accounts/{accountID}.
func (h *LedgerHandlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.GetAccount(r.Context(), domain.CompanyIDFromContext(r.Context()), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// UpdateAccount handles PUT .../accounts/{accountID}.
func (h *LedgerHandlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var account domain.Account
	if err := decodeBody(r, &account); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	account.ID = chi.URLParam(r, "accountID")
	account.CompanyID = domain.CompanyIDFromContext(r.Context())

	updated, err := h.ledger.UpdateAccount(r.Context(), &account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// PostTransaction handles POST .../transactions.
func (h *LedgerHandlers) PostTransaction(w http.ResponseWriter, r *http.Request) {
	var tx domain.Transaction
	if err := decodeBody(r, &tx); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	tx.CompanyID = domain.CompanyIDFromContext(r.Context())
	if user := domain.UserFromContext(r.Context()); user != nil {
		tx.CreatedBy = user.ID
	}

	posted, err := h.ledger.PostTransaction(r.Context(), &tx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, posted)
}

// ListTransactions handles GET .../transactions.
func (h *LedgerHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.ListTransactions(r.Context(), domain.CompanyIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// GetTransaction handles GET .../transactions/{transactionID}.
func (h *LedgerHandlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.ledger.GetTransaction(r.Context(), domain.CompanyIDFromContext(r.Context()), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

package api

import (
	"net/http"

	"finbooks/internal/application"
	"finbooks/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CompanyHandlers serves company CRUD and membership endpoints.
type CompanyHandlers struct {
	companies *application.CompanyService
	logger    zerolog.Logger
}

// NewCompanyHandlers creates the company handlers.
func NewCompanyHandlers(companies *application.CompanyService, logger zerolog.Logger) *CompanyHandlers {
	return &CompanyHandlers{companies: companies, logger: logger}
}

// Create handles POST /api/v1/companies.
func (h *CompanyHandlers) Create(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())

	var company domain.Company
	if err := decodeBody(r, &company); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if company.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "company name is required"})
		return
	}

	created, err := h.companies.Create(r.Context(), user.ID, &company)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/v1/companies.
func (h *CompanyHandlers) List(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())

	companies, err := h.companies.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if companies == nil {
		companies = []*domain.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}

// Get handles GET /api/v1/companies/{companyID}.
func (h *CompanyHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())

	company, err := h.companies.Get(r.Context(), user.ID, chi.URLParam(r, "companyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// Update handles PUT /api/v1/companies/{companyID}.
func (h *CompanyHandlers) Update(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())

	var company domain.Company
	if err := decodeBody(r, &company); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	company.ID = chi.URLParam(r, "companyID")

	updated, err := h.companies.Update(r.Context(), user.ID, &company)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/companies/{companyID}.
func (h *CompanyHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())

	if err := h.companies.Delete(r.Context(), user.ID, chi.URLParam(r, "companyID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AddMember handles POST /api/v1/companies/{companyID}/members.
func (h *CompanyHandlers) AddMember(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())

	var req addMemberRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleMember
	}

	if err := h.companies.AddMember(r.Context(), user.ID, chi.URLParam(r, "companyID"), req.UserID, req.Role); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

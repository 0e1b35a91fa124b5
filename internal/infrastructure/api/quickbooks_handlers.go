package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"finbooks/internal/application"
	"finbooks/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// QuickBooksHandlers serves the connection lifecycle and the resource-API
// proxy. The OAuth callback is the only public route; everything else runs
// behind the authenticator and company-membership middleware.
type QuickBooksHandlers struct {
	connections *application.ConnectionService
	logger      zerolog.Logger
}

// NewQuickBooksHandlers creates the QuickBooks handlers.
func NewQuickBooksHandlers(connections *application.ConnectionService, logger zerolog.Logger) *QuickBooksHandlers {
	return &QuickBooksHandlers{connections: connections, logger: logger}
}

type connectResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

type statusResponse struct {
	Connected             bool       `json:"connected"`
	RealmID               string     `json:"realm_id,omitempty"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
}

// Connect handles GET /api/v1/quickbooks/connect/{companyID}. It returns the
// consent URL for the frontend to redirect the browser to.
func (h *QuickBooksHandlers) Connect(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())
	companyID := chi.URLParam(r, "companyID")

	url := h.connections.ConnectURL(companyID, user.ID)
	writeJSON(w, http.StatusOK, connectResponse{AuthorizationURL: url})
}

// Callback handles GET /api/v1/quickbooks/callback, the browser redirect from
// the consent screen. It is unauthenticated; the state value carries the
// company and user context.
func (h *QuickBooksHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	conn, err := h.connections.HandleCallback(r.Context(), q.Get("code"), q.Get("state"), q.Get("realmId"))
	if err != nil {
		h.logger.Warn().Err(err).Msg("OAuth callback rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "connected",
		"company_id": conn.CompanyID,
		"realm_id":   conn.RealmID,
	})
}

// Status handles GET /api/v1/quickbooks/{companyID}/status. A missing
// connection is not an error here; it reports connected=false.
func (h *QuickBooksHandlers) Status(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	connected, err := h.connections.HasValidConnection(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !connected {
		writeJSON(w, http.StatusOK, statusResponse{Connected: false})
		return
	}

	conn, err := h.connections.Status(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Connected:             true,
		RealmID:               conn.RealmID,
		AccessTokenExpiresAt:  &conn.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: &conn.RefreshTokenExpiresAt,
	})
}

// Disconnect handles DELETE /api/v1/quickbooks/{companyID}/disconnect.
func (h *QuickBooksHandlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.connections.Disconnect(r.Context(), chi.URLParam(r, "companyID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompanyInfo handles GET /api/v1/quickbooks/{companyID}/company-info.
func (h *QuickBooksHandlers) CompanyInfo(w http.ResponseWriter, r *http.Request) {
	body, err := h.connections.CompanyInfo(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Proxy handles /api/v1/quickbooks/{companyID}/proxy/*. The wildcard tail is
// forwarded verbatim as the resource path; the upstream response body and
// status are passed through.
func (h *QuickBooksHandlers) Proxy(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	path := chi.URLParam(r, "*")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "resource path is required"})
		return
	}
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
			return
		}
		r.Body.Close()
	}

	respBody, status, err := h.connections.Call(r.Context(), companyID, r.Method, path, body)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(respBody) > 0 {
		w.Write(respBody)
	} else {
		json.NewEncoder(w).Encode(map[string]string{})
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"finbooks/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors to HTTP statuses. Upstream QuickBooks API
// rejections pass their status through; everything unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *domain.ExternalAPIError
	var authErr *domain.ExternalAuthError

	switch {
	case errors.Is(err, domain.ErrNotConnected):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quickbooks is not connected for this company"})
	case errors.Is(err, domain.ErrInvalidCallback):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid oauth callback"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, domain.ErrUnbalancedTransaction):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: "quickbooks api request failed"})
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "quickbooks authorization failed"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

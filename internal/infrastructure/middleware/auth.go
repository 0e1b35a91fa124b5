package middleware

import (
	"net/http"
	"strings"

	"finbooks/internal/application"
	"finbooks/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Authenticator validates the bearer token on every request and attaches the
// authenticated user to the request context. Requests without a valid token
// are rejected with 401.
func Authenticator(auth *application.AuthService, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			user, err := auth.UserFromToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Debug().Err(err).Msg("Token rejected")
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), user)))
		})
	}
}

// CompanyMember gates routes carrying a {companyID} URL parameter: the
// authenticated user must be a member of that company. The company id is
// attached to the context for downstream handlers.
func CompanyMember(companies *application.CompanyService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := domain.UserFromContext(r.Context())
			if user == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			companyID := chi.URLParam(r, "companyID")
			if companyID == "" {
				http.Error(w, "companyID is required", http.StatusBadRequest)
				return
			}

			if err := companies.Authorize(r.Context(), user.ID, companyID); err != nil {
				http.Error(w, "not a member of this company", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithCompanyID(r.Context(), companyID)))
		})
	}
}

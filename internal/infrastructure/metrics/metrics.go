package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokenRefreshes counts refresh-grant calls by outcome.
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finbooks_quickbooks_token_refresh_total",
		Help: "QuickBooks refresh-grant calls by outcome.",
	}, []string{"outcome"})

	// CodeExchanges counts authorization-code exchanges by outcome.
	CodeExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finbooks_quickbooks_code_exchange_total",
		Help: "QuickBooks authorization-code exchanges by outcome.",
	}, []string{"outcome"})

	// APIRequests counts proxied resource-API requests by method and status.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finbooks_quickbooks_api_requests_total",
		Help: "Proxied QuickBooks API requests by method and upstream status.",
	}, []string{"method", "status"})

	// Logins counts login attempts by outcome.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finbooks_auth_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
)

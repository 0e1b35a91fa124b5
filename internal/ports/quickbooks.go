package ports

import (
	"context"
	"net/http"
	"time"

	"finbooks/internal/domain"
)

// TokenExchanger wraps the two calls of the OAuth2 authorization-code grant
// against the platform token endpoint. Both surface failures immediately;
// neither retries.
type TokenExchanger interface {
	// AuthorizationURL builds the browser redirect URL for the consent
	// screen. The state value is passed through verbatim.
	AuthorizationURL(state string) string

	// ExchangeCode swaps a one-time authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error)

	// Refresh posts the refresh grant. The platform rotates the refresh
	// token on every call; the caller must persist the returned pair.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// APIClient issues authenticated requests to the platform resource API.
type APIClient interface {
	// Do performs {method} {apiBase}/company/{realmID}/{path} with bearer
	// authorization and returns the raw response body.
	Do(ctx context.Context, realmID, accessToken, method, path string, body []byte) ([]byte, int, error)
}

// Clock abstracts current-time reads so expiry comparisons are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Locker provides per-key mutual exclusion. Acquire blocks until the key's
// lock is held and returns a release function.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// HTTPDoer is the subset of *http.Client the infrastructure clients need.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

package quickbooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"finbooks/internal/config"
	"finbooks/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(authBase, apiBase string) config.QuickBooks {
	return config.QuickBooks{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example.com/callback",
		AuthBaseURL:  authBase,
		APIBaseURL:   apiBase,
	}
}

func TestAuthorizationURL(t *testing.T) {
	c := NewClient(testConfig("https://auth.example.com/oauth2/v1", ""), nil, zerolog.Nop())

	raw := c.AuthorizationURL("nonce|company-1|user-1")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "nonce|company-1|user-1", q.Get("state"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "com.intuit.quickbooks.accounting")
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":               "at-1",
			"refresh_token":              "rt-1",
			"expires_in":                 3600,
			"x_refresh_token_expires_in": 8640000,
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""), srv.Client(), zerolog.Nop())

	pair, err := c.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at-1", pair.AccessToken)
	assert.Equal(t, "rt-1", pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	assert.Equal(t, int64(8640000), pair.RefreshTokenExpiresIn)
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rt-old", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":               "at-2",
			"refresh_token":              "rt-2",
			"expires_in":                 3600,
			"x_refresh_token_expires_in": 8640000,
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""), srv.Client(), zerolog.Nop())

	pair, err := c.Refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "at-2", pair.AccessToken)
	assert.Equal(t, "rt-2", pair.RefreshToken)
}

func TestTokenEndpointRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""), srv.Client(), zerolog.Nop())

	_, err := c.Refresh(context.Background(), "rt-revoked")
	var authErr *domain.ExternalAuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
	assert.Contains(t, authErr.Body, "invalid_grant")
}

func TestDoSendsBearerRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/realm-1/companyinfo/realm-1", r.URL.Path)
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Write([]byte(`{"CompanyInfo":{}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig("", srv.URL), srv.Client(), zerolog.Nop())

	body, status, err := c.Do(context.Background(), "realm-1", "at-1", http.MethodGet, "companyinfo/realm-1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"CompanyInfo":{}}`, string(body))
}

func TestDoSurfacesUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"Fault":{}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig("", srv.URL), srv.Client(), zerolog.Nop())

	_, status, err := c.Do(context.Background(), "realm-1", "at-1", http.MethodGet, "query", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)

	var apiErr *domain.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestDoStripsLeadingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig("", srv.URL), srv.Client(), zerolog.Nop())

	_, _, err := c.Do(context.Background(), "realm-1", "at-1", http.MethodGet, "/invoice/42", nil)
	require.NoError(t, err)
	assert.Equal(t, "/company/realm-1/invoice/42", gotPath)
}

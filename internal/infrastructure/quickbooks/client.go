package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finbooks/internal/config"
	"finbooks/internal/domain"
	"finbooks/internal/infrastructure/metrics"
	"finbooks/internal/ports"

	"github.com/rs/zerolog"
)

// Scopes requested during authorization.
const scopes = "com.intuit.quickbooks.accounting com.intuit.quickbooks.payment"

// Client talks to the QuickBooks OAuth token endpoint and resource API. It
// implements ports.TokenExchanger and ports.APIClient.
type Client struct {
	cfg    config.QuickBooks
	http   ports.HTTPDoer
	logger zerolog.Logger
}

// NewClient creates a QuickBooks client. A nil httpClient falls back to a
// default client with a 30s timeout.
func NewClient(cfg config.QuickBooks, httpClient ports.HTTPDoer, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
	}
}

// AuthorizationURL builds the platform authorize URL for a browser redirect.
// The state value carries all the context the callback needs; nothing is
// persisted server-side.
func (c *Client) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	params.Set("response_type", "code")
	params.Set("scope", scopes)
	params.Set("redirect_uri", c.cfg.RedirectURI)
	params.Set("state", state)

	return fmt.Sprintf("%s/authorize?%s", c.cfg.AuthBaseURL, params.Encode())
}

// ExchangeCode swaps an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error) {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", c.cfg.RedirectURI)

	pair, err := c.postTokenEndpoint(ctx, params)
	if err != nil {
		metrics.CodeExchanges.WithLabelValues("error").Inc()
		c.logger.Error().Err(err).Msg("Failed to exchange authorization code")
		return nil, err
	}

	metrics.CodeExchanges.WithLabelValues("ok").Inc()
	return pair, nil
}

// Refresh posts the refresh grant. The platform rotates the refresh token on
// every call, so the caller must persist the returned pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", refreshToken)

	pair, err := c.postTokenEndpoint(ctx, params)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		c.logger.Error().Err(err).Msg("Failed to refresh access token")
		return nil, err
	}

	metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	return pair, nil
}

// postTokenEndpoint performs a form POST to {authBase}/token with the client
// credentials as basic auth and decodes the token response.
func (c *Client) postTokenEndpoint(ctx context.Context, params url.Values) (*domain.TokenPair, error) {
	tokenURL := c.cfg.AuthBaseURL + "/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.ExternalAuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.ExternalAuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var pair domain.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &pair, nil
}

// Do issues {method} {apiBase}/company/{realmID}/{path} with bearer
// authorization and returns the raw response body and status. Non-2xx
// responses surface as *domain.ExternalAPIError; there is no retry.
func (c *Client) Do(ctx context.Context, realmID, accessToken, method, path string, body []byte) ([]byte, int, error) {
	reqURL := fmt.Sprintf("%s/company/%s/%s", c.cfg.APIBaseURL, realmID, strings.TrimPrefix(path, "/"))

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create api request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(method, "transport_error").Inc()
		return nil, 0, &domain.ExternalAPIError{Err: err}
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Msg("QuickBooks API request rejected")
		return nil, resp.StatusCode, &domain.ExternalAPIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, resp.StatusCode, nil
}

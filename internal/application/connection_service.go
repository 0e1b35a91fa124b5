package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finbooks/internal/domain"
	"finbooks/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// expiryLookahead is how far ahead of the access token's recorded expiry a
// refresh is triggered. A token within this window is treated as already
// expired so a proxied request never leaves with a token about to die.
const expiryLookahead = 5 * time.Minute

// ConnectionService owns the QuickBooks connection lifecycle for a company:
// the consent redirect, the callback exchange, lazy token refresh and
// disconnect. It depends on ports only.
type ConnectionService struct {
	connections ports.ConnectionRepository
	exchanger   ports.TokenExchanger
	api         ports.APIClient
	locker      ports.Locker
	clock       ports.Clock
	logger      zerolog.Logger
}

// NewConnectionService creates the connection service.
func NewConnectionService(
	connections ports.ConnectionRepository,
	exchanger ports.TokenExchanger,
	api ports.APIClient,
	locker ports.Locker,
	clock ports.Clock,
	logger zerolog.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		exchanger:   exchanger,
		api:         api,
		locker:      locker,
		clock:       clock,
		logger:      logger,
	}
}

// ConnectURL returns the consent URL for a company. The state value carries a
// nonce plus the company and user ids, so the callback needs no server-side
// session.
func (s *ConnectionService) ConnectURL(companyID, userID string) string {
	state := fmt.Sprintf("%s|%s|%s", uuid.NewString(), companyID, userID)
	return s.exchanger.AuthorizationURL(state)
}

// parseState splits a callback state value into its nonce, company id and
// user id. Anything other than exactly three non-empty pipe-separated fields
// is rejected.
func parseState(state string) (companyID, userID string, err error) {
	parts := strings.Split(state, "|")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", domain.ErrInvalidCallback
	}
	return parts[1], parts[2], nil
}

// HandleCallback completes the authorization flow: it validates the callback
// parameters, exchanges the code for a token pair and stores the connection.
// Re-authorization overwrites the existing record in place, including the
// realm id. Nothing is persisted if validation or the exchange fails.
func (s *ConnectionService) HandleCallback(ctx context.Context, code, state, realmID string) (*domain.Connection, error) {
	if code == "" || realmID == "" {
		return nil, domain.ErrInvalidCallback
	}

	companyID, userID, err := parseState(state)
	if err != nil {
		return nil, err
	}

	pair, err := s.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	accessExpiry := now.Add(time.Duration(pair.ExpiresIn) * time.Second)
	refreshExpiry := now.Add(time.Duration(pair.RefreshTokenExpiresIn) * time.Second)

	existing, err := s.connections.FindByCompany(ctx, companyID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		update := &domain.ConnectionUpdate{
			RealmID:               &realmID,
			AccessToken:           &pair.AccessToken,
			RefreshToken:          &pair.RefreshToken,
			AccessTokenExpiresAt:  &accessExpiry,
			RefreshTokenExpiresAt: &refreshExpiry,
			UpdatedBy:             &userID,
		}
		conn, err := s.connections.Update(ctx, existing.ID, update)
		if err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("company_id", companyID).
			Str("realm_id", realmID).
			Msg("QuickBooks connection re-authorized")
		return conn, nil
	}

	conn := &domain.Connection{
		CompanyID:             companyID,
		RealmID:               realmID,
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshTokenExpiresAt: refreshExpiry,
		CreatedBy:             userID,
		UpdatedBy:             userID,
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost a create race; the winner's record is the connection.
			return s.connections.FindByCompany(ctx, companyID)
		}
		return nil, err
	}

	s.logger.Info().
		Str("company_id", companyID).
		Str("realm_id", realmID).
		Msg("QuickBooks connection established")
	return conn, nil
}

// ValidAccessToken returns an access token guaranteed to be valid for at
// least the lookahead window, along with the connection's realm id. A token
// inside the window is refreshed first, under a per-company lock so
// concurrent callers perform a single refresh.
func (s *ConnectionService) ValidAccessToken(ctx context.Context, companyID string) (token, realmID string, err error) {
	conn, err := s.findConnection(ctx, companyID)
	if err != nil {
		return "", "", err
	}

	now := s.clock.Now()
	if conn.AccessTokenExpiresAt.After(now.Add(expiryLookahead)) {
		return conn.AccessToken, conn.RealmID, nil
	}
	if !conn.RefreshTokenExpiresAt.After(now) {
		return "", "", domain.ErrNotConnected
	}

	release, err := s.locker.Acquire(ctx, "qb:refresh:"+companyID)
	if err != nil {
		return "", "", fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	defer release()

	// Another caller may have refreshed while we waited for the lock.
	conn, err = s.findConnection(ctx, companyID)
	if err != nil {
		return "", "", err
	}
	now = s.clock.Now()
	if conn.AccessTokenExpiresAt.After(now.Add(expiryLookahead)) {
		return conn.AccessToken, conn.RealmID, nil
	}

	pair, err := s.exchanger.Refresh(ctx, conn.RefreshToken)
	if err != nil {
		return "", "", err
	}

	now = s.clock.Now()
	accessExpiry := now.Add(time.Duration(pair.ExpiresIn) * time.Second)
	refreshExpiry := now.Add(time.Duration(pair.RefreshTokenExpiresIn) * time.Second)

	update := &domain.ConnectionUpdate{
		AccessToken:           &pair.AccessToken,
		RefreshToken:          &pair.RefreshToken,
		AccessTokenExpiresAt:  &accessExpiry,
		RefreshTokenExpiresAt: &refreshExpiry,
	}
	conn, err = s.connections.Update(ctx, conn.ID, update)
	if err != nil {
		return "", "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	s.logger.Debug().
		Str("company_id", companyID).
		Time("access_expires_at", accessExpiry).
		Msg("Access token refreshed")
	return conn.AccessToken, conn.RealmID, nil
}

// HasValidConnection reports whether the company has a connection whose
// refresh token is still alive. The access token's state is irrelevant; an
// expired access token with a live refresh token is still a valid connection.
func (s *ConnectionService) HasValidConnection(ctx context.Context, companyID string) (bool, error) {
	conn, err := s.findConnection(ctx, companyID)
	if errors.Is(err, domain.ErrNotConnected) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return conn.RefreshTokenExpiresAt.After(s.clock.Now()), nil
}

// Status returns the company's connection with its token material stripped by
// serialization tags, or ErrNotConnected.
func (s *ConnectionService) Status(ctx context.Context, companyID string) (*domain.Connection, error) {
	return s.findConnection(ctx, companyID)
}

// Disconnect deletes the company's stored connection. Missing connections
// surface as ErrNotConnected.
func (s *ConnectionService) Disconnect(ctx context.Context, companyID string) error {
	conn, err := s.findConnection(ctx, companyID)
	if err != nil {
		return err
	}

	deleted, err := s.connections.Delete(ctx, conn.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotConnected
	}

	s.logger.Info().Str("company_id", companyID).Msg("QuickBooks connection removed")
	return nil
}

// Call proxies one request to the QuickBooks resource API on behalf of a
// company, refreshing the access token first if needed. Upstream rejections
// surface as *domain.ExternalAPIError; there is no retry, caching or rate
// limiting.
func (s *ConnectionService) Call(ctx context.Context, companyID, method, path string, body []byte) ([]byte, int, error) {
	token, realmID, err := s.ValidAccessToken(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}
	return s.api.Do(ctx, realmID, token, method, path, body)
}

// CompanyInfo fetches the connected realm's company profile.
func (s *ConnectionService) CompanyInfo(ctx context.Context, companyID string) ([]byte, error) {
	token, realmID, err := s.ValidAccessToken(ctx, companyID)
	if err != nil {
		return nil, err
	}

	body, _, err := s.api.Do(ctx, realmID, token, "GET", "companyinfo/"+realmID, nil)
	return body, err
}

func (s *ConnectionService) findConnection(ctx context.Context, companyID string) (*domain.Connection, error) {
	conn, err := s.connections.FindByCompany(ctx, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

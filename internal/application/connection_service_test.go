package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"finbooks/internal/domain"
	"finbooks/internal/infrastructure/locker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a settable instant.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeConnectionRepo is an in-memory ConnectionRepository.
type fakeConnectionRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[string]*domain.Connection
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{byID: make(map[string]*domain.Connection)}
}

func (r *fakeConnectionRepo) FindByCompany(_ context.Context, companyID string) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.CompanyID == companyID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeConnectionRepo) Create(_ context.Context, conn *domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.CompanyID == conn.CompanyID {
			return domain.ErrAlreadyExists
		}
	}
	r.nextID++
	conn.ID = fmt.Sprintf("conn-%d", r.nextID)
	cp := *conn
	r.byID[conn.ID] = &cp
	return nil
}

func (r *fakeConnectionRepo) Update(_ context.Context, id string, update *domain.ConnectionUpdate) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.RealmID != nil {
		c.RealmID = *update.RealmID
	}
	if update.AccessToken != nil {
		c.AccessToken = *update.AccessToken
	}
	if update.RefreshToken != nil {
		c.RefreshToken = *update.RefreshToken
	}
	if update.AccessTokenExpiresAt != nil {
		c.AccessTokenExpiresAt = *update.AccessTokenExpiresAt
	}
	if update.RefreshTokenExpiresAt != nil {
		c.RefreshTokenExpiresAt = *update.RefreshTokenExpiresAt
	}
	if update.UpdatedBy != nil {
		c.UpdatedBy = *update.UpdatedBy
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConnectionRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *fakeConnectionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// fakeExchanger returns scripted token pairs and counts calls.
type fakeExchanger struct {
	mu           sync.Mutex
	exchangeErr  error
	refreshErr   error
	exchanges    int
	refreshes    int
	pairSequence int
}

func (f *fakeExchanger) AuthorizationURL(state string) string {
	return "https://auth.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeExchanger) ExchangeCode(_ context.Context, code string) (*domain.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &domain.TokenPair{
		AccessToken:           "access-" + code,
		RefreshToken:          "refresh-" + code,
		ExpiresIn:             3600,
		RefreshTokenExpiresIn: 8640000,
	}, nil
}

func (f *fakeExchanger) Refresh(_ context.Context, _ string) (*domain.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.pairSequence++
	return &domain.TokenPair{
		AccessToken:           fmt.Sprintf("access-rotated-%d", f.pairSequence),
		RefreshToken:          fmt.Sprintf("refresh-rotated-%d", f.pairSequence),
		ExpiresIn:             3600,
		RefreshTokenExpiresIn: 8640000,
	}, nil
}

func (f *fakeExchanger) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

// fakeAPI records the last proxied request.
type fakeAPI struct {
	lastRealm  string
	lastToken  string
	lastMethod string
	lastPath   string
	response   []byte
	status     int
	err        error
}

func (f *fakeAPI) Do(_ context.Context, realmID, accessToken, method, path string, _ []byte) ([]byte, int, error) {
	f.lastRealm = realmID
	f.lastToken = accessToken
	f.lastMethod = method
	f.lastPath = path
	if f.err != nil {
		return nil, f.status, f.err
	}
	return f.response, f.status, nil
}

func newTestService(t *testing.T) (*ConnectionService, *fakeConnectionRepo, *fakeExchanger, *fakeAPI, *fixedClock) {
	t.Helper()
	repo := newFakeConnectionRepo()
	exchanger := &fakeExchanger{}
	api := &fakeAPI{response: []byte(`{"ok":true}`), status: 200}
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewConnectionService(repo, exchanger, api, locker.NewMemoryLocker(), clock, zerolog.Nop())
	return svc, repo, exchanger, api, clock
}

func callbackState(companyID, userID string) string {
	return fmt.Sprintf("nonce-123|%s|%s", companyID, userID)
}

func TestConnectURLStateRoundTrip(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	raw := svc.ConnectURL("company-1", "user-1")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	companyID, userID, err := parseState(parsed.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "company-1", companyID)
	assert.Equal(t, "user-1", userID)
}

func TestHandleCallbackCreatesConnection(t *testing.T) {
	svc, repo, _, _, clock := newTestService(t)
	t0 := clock.Now()

	conn, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-9")
	require.NoError(t, err)

	assert.Equal(t, "company-1", conn.CompanyID)
	assert.Equal(t, "realm-9", conn.RealmID)
	assert.Equal(t, "access-code-1", conn.AccessToken)
	assert.Equal(t, "refresh-code-1", conn.RefreshToken)
	assert.Equal(t, "user-1", conn.CreatedBy)
	assert.True(t, conn.AccessTokenExpiresAt.Equal(t0.Add(3600*time.Second)))
	assert.True(t, conn.RefreshTokenExpiresAt.Equal(t0.Add(8640000*time.Second)))
	assert.Equal(t, 1, repo.count())
}

func TestHandleCallbackReauthorizationOverwrites(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)

	first, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	second, err := svc.HandleCallback(context.Background(), "code-2", callbackState("company-1", "user-2"), "realm-2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "realm-2", second.RealmID)
	assert.Equal(t, "access-code-2", second.AccessToken)
	assert.Equal(t, "user-2", second.UpdatedBy)
	assert.Equal(t, 1, repo.count())
}

// raceFindRepo hides the connection from the first two FindByCompany calls,
// so two sequential callbacks behave like racing ones: both see no record,
// the second caller's create collides with the first's.
type raceFindRepo struct {
	*fakeConnectionRepo
	findMu sync.Mutex
	finds  int
}

func (r *raceFindRepo) FindByCompany(ctx context.Context, companyID string) (*domain.Connection, error) {
	r.findMu.Lock()
	r.finds++
	n := r.finds
	r.findMu.Unlock()
	if n <= 2 {
		return nil, domain.ErrNotFound
	}
	return r.fakeConnectionRepo.FindByCompany(ctx, companyID)
}

func TestHandleCallbackCreateRaceKeepsSingleRecord(t *testing.T) {
	repo := &raceFindRepo{fakeConnectionRepo: newFakeConnectionRepo()}
	exchanger := &fakeExchanger{}
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewConnectionService(repo, exchanger, &fakeAPI{}, locker.NewMemoryLocker(), clock, zerolog.Nop())

	winner, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	// The loser's create collides; it must still succeed with the winner's
	// record instead of failing the browser redirect.
	loser, err := svc.HandleCallback(context.Background(), "code-2", callbackState("company-1", "user-2"), "realm-1")
	require.NoError(t, err)

	assert.Equal(t, winner.ID, loser.ID)
	assert.Equal(t, "access-code-1", loser.AccessToken)
	assert.Equal(t, 1, repo.count(), "exactly one record may survive the race")
}

func TestHandleCallbackRejectsMalformedState(t *testing.T) {
	svc, repo, exchanger, _, _ := newTestService(t)

	cases := []string{
		"",
		"nonce-only",
		"nonce|company",
		"nonce|company|user|extra",
		"|company-1|user-1",
		"nonce||user-1",
		"nonce|company-1|",
	}
	for _, state := range cases {
		_, err := svc.HandleCallback(context.Background(), "code-1", state, "realm-1")
		assert.ErrorIs(t, err, domain.ErrInvalidCallback, "state %q", state)
	}

	assert.Equal(t, 0, exchanger.exchanges, "exchange must not run on invalid state")
	assert.Equal(t, 0, repo.count(), "nothing may be persisted on invalid state")
}

func TestHandleCallbackRejectsMissingParams(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "", callbackState("c", "u"), "realm-1")
	assert.ErrorIs(t, err, domain.ErrInvalidCallback)

	_, err = svc.HandleCallback(context.Background(), "code-1", callbackState("c", "u"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidCallback)

	assert.Equal(t, 0, repo.count())
}

func TestHandleCallbackExchangeFailureDoesNotPersist(t *testing.T) {
	svc, repo, exchanger, _, _ := newTestService(t)
	exchanger.exchangeErr = &domain.ExternalAuthError{StatusCode: 400, Body: "invalid_grant"}

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")

	var authErr *domain.ExternalAuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 400, authErr.StatusCode)
	assert.Equal(t, 0, repo.count())
}

func TestValidAccessTokenReturnsFreshTokenWithoutRefresh(t *testing.T) {
	svc, _, exchanger, _, _ := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	token, realm, err := svc.ValidAccessToken(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "access-code-1", token)
	assert.Equal(t, "realm-1", realm)
	assert.Equal(t, 0, exchanger.refreshCount())
}

func TestValidAccessTokenRefreshesInsideLookaheadWindow(t *testing.T) {
	svc, repo, exchanger, _, clock := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	// 3596s after issue the token has 4s of life left, inside the 5m window.
	clock.Advance(3596 * time.Second)

	token, _, err := svc.ValidAccessToken(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "access-rotated-1", token)
	assert.Equal(t, 1, exchanger.refreshCount())

	// The rotated refresh token must be persisted.
	stored, err := repo.FindByCompany(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-rotated-1", stored.RefreshToken)
	assert.True(t, stored.AccessTokenExpiresAt.Equal(clock.Now().Add(3600*time.Second)))
}

func TestValidAccessTokenRefreshFailureKeepsRecord(t *testing.T) {
	svc, repo, exchanger, _, clock := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	exchanger.refreshErr = &domain.ExternalAuthError{StatusCode: 401, Body: "token revoked"}

	_, _, err = svc.ValidAccessToken(context.Background(), "company-1")
	var authErr *domain.ExternalAuthError
	require.ErrorAs(t, err, &authErr)

	// The stored pair is untouched so a later retry can still work.
	stored, err := repo.FindByCompany(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-code-1", stored.RefreshToken)
}

func TestValidAccessTokenWhenNotConnected(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, _, err := svc.ValidAccessToken(context.Background(), "company-1")
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestValidAccessTokenWhenRefreshTokenExpired(t *testing.T) {
	svc, _, _, _, clock := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	clock.Advance(8640001 * time.Second)

	_, _, err = svc.ValidAccessToken(context.Background(), "company-1")
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestConcurrentRefreshPerformsSingleRefresh(t *testing.T) {
	svc, _, exchanger, _, clock := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	var wg sync.WaitGroup
	tokens := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, _, err := svc.ValidAccessToken(context.Background(), "company-1")
			assert.NoError(t, err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, exchanger.refreshCount(), "concurrent callers must share one refresh")
	for _, token := range tokens {
		assert.Equal(t, "access-rotated-1", token)
	}
}

func TestHasValidConnection(t *testing.T) {
	svc, _, _, _, clock := newTestService(t)

	// No record at all.
	ok, err := svc.HasValidConnection(context.Background(), "company-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	// Access token expired but refresh token alive: still connected.
	clock.Advance(2 * time.Hour)
	ok, err = svc.HasValidConnection(context.Background(), "company-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Refresh token expired: no longer connected.
	clock.Advance(8640000 * time.Second)
	ok, err = svc.HasValidConnection(context.Background(), "company-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDisconnect(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(context.Background(), "company-1"))
	assert.Equal(t, 0, repo.count())

	err = svc.Disconnect(context.Background(), "company-1")
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestCallProxiesWithValidToken(t *testing.T) {
	svc, _, _, api, _ := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-7")
	require.NoError(t, err)

	body, status, err := svc.Call(context.Background(), "company-1", "GET", "query?query=select * from Invoice", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, []byte(`{"ok":true}`), body)
	assert.Equal(t, "realm-7", api.lastRealm)
	assert.Equal(t, "access-code-1", api.lastToken)
}

func TestCallSurfacesUpstreamError(t *testing.T) {
	svc, _, _, api, _ := newTestService(t)
	api.err = &domain.ExternalAPIError{StatusCode: 429, Body: "throttled"}
	api.status = 429

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-1")
	require.NoError(t, err)

	_, status, err := svc.Call(context.Background(), "company-1", "GET", "companyinfo/realm-1", nil)
	var apiErr *domain.ExternalAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.Equal(t, 429, status)
}

func TestCompanyInfoUsesRealmPath(t *testing.T) {
	svc, _, _, api, _ := newTestService(t)

	_, err := svc.HandleCallback(context.Background(), "code-1", callbackState("company-1", "user-1"), "realm-42")
	require.NoError(t, err)

	_, err = svc.CompanyInfo(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "GET", api.lastMethod)
	assert.Equal(t, "companyinfo/realm-42", api.lastPath)
}

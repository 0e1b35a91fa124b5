package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"finbooks/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompanyRepo is an in-memory CompanyRepository.
type fakeCompanyRepo struct {
	mu          sync.Mutex
	nextID      int
	companies   map[string]*domain.Company
	memberships map[string]*domain.Membership // key: userID|companyID
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{
		companies:   make(map[string]*domain.Company),
		memberships: make(map[string]*domain.Membership),
	}
}

func membershipKey(userID, companyID string) string { return userID + "|" + companyID }

func (r *fakeCompanyRepo) Create(_ context.Context, company *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	company.ID = fmt.Sprintf("company-%d", r.nextID)
	cp := *company
	r.companies[company.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, company *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *company
	r.companies[company.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

func (r *fakeCompanyRepo) AddMember(_ context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey(m.UserID, m.CompanyID)
	if _, ok := r.memberships[key]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *m
	r.memberships[key] = &cp
	return nil
}

func (r *fakeCompanyRepo) FindMembership(_ context.Context, userID, companyID string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[membershipKey(userID, companyID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeCompanyRepo) ListByUser(_ context.Context, userID string) ([]*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Company
	for _, m := range r.memberships {
		if m.UserID != userID {
			continue
		}
		if c, ok := r.companies[m.CompanyID]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestCompanyService(t *testing.T) *CompanyService {
	t.Helper()
	return NewCompanyService(newFakeCompanyRepo(), zerolog.Nop())
}

func TestCreateCompanyMakesCreatorOwner(t *testing.T) {
	svc := newTestCompanyService(t)

	company, err := svc.Create(context.Background(), "user-1", &domain.Company{Name: "Acme"})
	require.NoError(t, err)
	require.NotEmpty(t, company.ID)

	assert.NoError(t, svc.Authorize(context.Background(), "user-1", company.ID))

	// The owner may update and delete.
	company.Name = "Acme Ltd"
	_, err = svc.Update(context.Background(), "user-1", company)
	assert.NoError(t, err)
}

func TestNonMemberIsUnauthorized(t *testing.T) {
	svc := newTestCompanyService(t)

	company, err := svc.Create(context.Background(), "user-1", &domain.Company{Name: "Acme"})
	require.NoError(t, err)

	err = svc.Authorize(context.Background(), "user-2", company.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Get(context.Background(), "user-2", company.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMemberCannotDelete(t *testing.T) {
	svc := newTestCompanyService(t)

	company, err := svc.Create(context.Background(), "user-1", &domain.Company{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(context.Background(), "user-1", company.ID, "user-2", domain.RoleMember))

	// Members can read but not delete or add members.
	_, err = svc.Get(context.Background(), "user-2", company.ID)
	assert.NoError(t, err)

	err = svc.Delete(context.Background(), "user-2", company.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = svc.AddMember(context.Background(), "user-2", company.ID, "user-3", domain.RoleMember)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListReturnsOnlyUsersCompanies(t *testing.T) {
	svc := newTestCompanyService(t)

	a, err := svc.Create(context.Background(), "user-1", &domain.Company{Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "user-2", &domain.Company{Name: "Globex"})
	require.NoError(t, err)

	companies, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, a.ID, companies[0].ID)
}

package application

import (
	"context"
	"errors"

	"finbooks/internal/domain"
	"finbooks/internal/ports"

	"github.com/rs/zerolog"
)

// CompanyService manages companies and memberships. Every read and write is
// gated by the caller's membership in the target company.
type CompanyService struct {
	companies ports.CompanyRepository
	logger    zerolog.Logger
}

// NewCompanyService creates the company service.
func NewCompanyService(companies ports.CompanyRepository, logger zerolog.Logger) *CompanyService {
	return &CompanyService{companies: companies, logger: logger}
}

// Create registers a company and makes the creator its owner.
func (s *CompanyService) Create(ctx context.Context, userID string, company *domain.Company) (*domain.Company, error) {
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	membership := &domain.Membership{
		UserID:    userID,
		CompanyID: company.ID,
		Role:      domain.RoleOwner,
	}
	if err := s.companies.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("company_id", company.ID).
		Str("user_id", userID).
		Msg("Company created")
	return company, nil
}

// Get returns a company the user belongs to.
func (s *CompanyService) Get(ctx context.Context, userID, companyID string) (*domain.Company, error) {
	if err := s.Authorize(ctx, userID, companyID); err != nil {
		return nil, err
	}
	return s.companies.FindByID(ctx, companyID)
}

// List returns the companies the user belongs to.
func (s *CompanyService) List(ctx context.Context, userID string) ([]*domain.Company, error) {
	return s.companies.ListByUser(ctx, userID)
}

// Update modifies a company. Only owners may update.
func (s *CompanyService) Update(ctx context.Context, userID string, company *domain.Company) (*domain.Company, error) {
	if err := s.authorizeOwner(ctx, userID, company.ID); err != nil {
		return nil, err
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return s.companies.FindByID(ctx, company.ID)
}

// Delete removes a company and its memberships. Only owners may delete.
func (s *CompanyService) Delete(ctx context.Context, userID, companyID string) error {
	if err := s.authorizeOwner(ctx, userID, companyID); err != nil {
		return err
	}
	if err := s.companies.Delete(ctx, companyID); err != nil {
		return err
	}

	s.logger.Info().Str("company_id", companyID).Msg("Company deleted")
	return nil
}

// AddMember links another user to the company. Only owners may add members.
func (s *CompanyService) AddMember(ctx context.Context, ownerID, companyID, userID, role string) error {
	if err := s.authorizeOwner(ctx, ownerID, companyID); err != nil {
		return err
	}
	return s.companies.AddMember(ctx, &domain.Membership{
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	})
}

// Authorize fails with ErrUnauthorized unless the user is a member of the
// company. Missing companies are indistinguishable from forbidden ones.
func (s *CompanyService) Authorize(ctx context.Context, userID, companyID string) error {
	_, err := s.companies.FindMembership(ctx, userID, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrUnauthorized
	}
	return err
}

func (s *CompanyService) authorizeOwner(ctx context.Context, userID, companyID string) error {
	m, err := s.companies.FindMembership(ctx, userID, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if m.Role != domain.RoleOwner {
		return domain.ErrUnauthorized
	}
	return nil
}

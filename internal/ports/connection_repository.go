package ports

import (
	"context"

	"finbooks/internal/domain"
)

// ConnectionRepository persists QuickBooks connections, at most one per
// company. Create fails with domain.ErrAlreadyExists when the company already
// has a record; the backing store enforces this with a unique index.
type ConnectionRepository interface {
	FindByCompany(ctx context.Context, companyID string) (*domain.Connection, error)
	Create(ctx context.Context, conn *domain.Connection) error
	Update(ctx context.Context, id string, update *domain.ConnectionUpdate) (*domain.Connection, error)

	// Delete removes the record and reports whether one existed.
	Delete(ctx context.Context, id string) (bool, error)
}

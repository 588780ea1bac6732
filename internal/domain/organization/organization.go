package organization

import (
	"context"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Organization is a corporate customer with one registered admin. The
// admin allocates credit to, and buys courses for, member employees.
type Organization struct {
	shared.BaseAggregateRoot
	Name    string
	AdminID uuid.UUID
}

// NewOrganization creates an organization with its registered admin
func NewOrganization(name string, adminID uuid.UUID) (*Organization, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if adminID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ADMIN", "Admin ID cannot be empty")
	}
	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		AdminID:           adminID,
	}, nil
}

// IsAdministeredBy reports whether the given user is the registered admin
func (o *Organization) IsAdministeredBy(userID uuid.UUID) bool {
	return o.AdminID == userID
}

// Repository persists organizations and their membership
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	// FindByAdminID returns the organization the user administers, or
	// ErrNotFound when the user is not a registered admin.
	FindByAdminID(ctx context.Context, adminID uuid.UUID) (*Organization, error)
	IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
	Save(ctx context.Context, org *Organization) error
	AddMember(ctx context.Context, orgID, userID uuid.UUID) error
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/coursehub/backend/internal/domain/organization"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements organization.Repository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	var model models.OrganizationModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAdminID finds the organization a user administers
func (r *GormOrganizationRepository) FindByAdminID(ctx context.Context, adminID uuid.UUID) (*organization.Organization, error) {
	var model models.OrganizationModel
	if err := session(ctx, r.db).WithContext(ctx).
		First(&model, "admin_id = ?", adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// IsMember reports whether the user belongs to the organization
func (r *GormOrganizationRepository) IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := session(ctx, r.db).WithContext(ctx).
		Model(&models.OrganizationMemberModel{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *organization.Organization) error {
	model := models.OrganizationModelFromDomain(org)
	return session(ctx, r.db).WithContext(ctx).Save(model).Error
}

// AddMember records a user's membership; adding twice is a no-op
func (r *GormOrganizationRepository) AddMember(ctx context.Context, orgID, userID uuid.UUID) error {
	member := models.OrganizationMemberModel{
		OrganizationID: orgID,
		UserID:         userID,
		CreatedAt:      time.Now(),
	}
	if err := session(ctx, r.db).WithContext(ctx).Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

var _ organization.Repository = (*GormOrganizationRepository)(nil)

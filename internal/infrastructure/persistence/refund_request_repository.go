package persistence

import (
	"context"
	"errors"

	"github.com/coursehub/backend/internal/domain/refund"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRefundRequestRepository implements refund.Repository using GORM
type GormRefundRequestRepository struct {
	db *gorm.DB
}

// NewGormRefundRequestRepository creates a new GormRefundRequestRepository
func NewGormRefundRequestRepository(db *gorm.DB) *GormRefundRequestRepository {
	return &GormRefundRequestRepository{db: db}
}

// FindByID finds a refund request by its ID
func (r *GormRefundRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*refund.Request, error) {
	var model models.RefundRequestModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingByEnrollment finds the PENDING request for an enrollment
func (r *GormRefundRequestRepository) FindPendingByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*refund.Request, error) {
	var model models.RefundRequestModel
	if err := session(ctx, r.db).WithContext(ctx).
		Where("enrollment_id = ? AND status = ?", enrollmentID, string(refund.StatusPending)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new refund request
func (r *GormRefundRequestRepository) Create(ctx context.Context, request *refund.Request) error {
	model := models.RefundRequestModelFromDomain(request)
	return session(ctx, r.db).WithContext(ctx).Create(model).Error
}

// Save updates a refund request with an optimistic version check so two
// reviewers cannot both decide the same request.
func (r *GormRefundRequestRepository) Save(ctx context.Context, request *refund.Request) error {
	model := models.RefundRequestModelFromDomain(request)
	result := session(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", request.ID, request.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a refund request
func (r *GormRefundRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := session(ctx, r.db).WithContext(ctx).Delete(&models.RefundRequestModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ refund.Repository = (*GormRefundRequestRepository)(nil)

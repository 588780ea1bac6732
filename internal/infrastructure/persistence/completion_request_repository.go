package persistence

import (
	"context"
	"errors"

	"github.com/coursehub/backend/internal/domain/reward"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompletionRequestRepository implements reward.CompletionRequestRepository using GORM
type GormCompletionRequestRepository struct {
	db *gorm.DB
}

// NewGormCompletionRequestRepository creates a new GormCompletionRequestRepository
func NewGormCompletionRequestRepository(db *gorm.DB) *GormCompletionRequestRepository {
	return &GormCompletionRequestRepository{db: db}
}

// FindByID finds a completion request by its ID
func (r *GormCompletionRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*reward.CourseCompletionRequest, error) {
	var model models.CompletionRequestModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingByCourse finds the PENDING request for a course
func (r *GormCompletionRequestRepository) FindPendingByCourse(ctx context.Context, courseID uuid.UUID) (*reward.CourseCompletionRequest, error) {
	var model models.CompletionRequestModel
	if err := session(ctx, r.db).WithContext(ctx).
		Where("course_id = ? AND status = ?", courseID, string(reward.CompletionPending)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new completion request
func (r *GormCompletionRequestRepository) Create(ctx context.Context, request *reward.CourseCompletionRequest) error {
	model := models.CompletionRequestModelFromDomain(request)
	return session(ctx, r.db).WithContext(ctx).Create(model).Error
}

// Save updates a completion request with an optimistic version check so
// two reviewers cannot both decide the same request.
func (r *GormCompletionRequestRepository) Save(ctx context.Context, request *reward.CourseCompletionRequest) error {
	model := models.CompletionRequestModelFromDomain(request)
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

var _ reward.CompletionRequestRepository = (*GormCompletionRequestRepository)(nil)

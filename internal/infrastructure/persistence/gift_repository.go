package persistence

import (
	"context"
	"errors"

	"github.com/coursehub/backend/internal/domain/gift"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGiftRepository implements gift.Repository using GORM. The unique
// index on code backs single-use claim codes; the optimistic version
// check in Save makes concurrent claims of the same code lose cleanly.
type GormGiftRepository struct {
	db *gorm.DB
}

// NewGormGiftRepository creates a new GormGiftRepository
func NewGormGiftRepository(db *gorm.DB) *GormGiftRepository {
	return &GormGiftRepository{db: db}
}

// FindByID finds a gift by its ID
func (r *GormGiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*gift.CourseGift, error) {
	var model models.CourseGiftModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a gift by its claim code
func (r *GormGiftRepository) FindByCode(ctx context.Context, code string) (*gift.CourseGift, error) {
	var model models.CourseGiftModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new gift
func (r *GormGiftRepository) Create(ctx context.Context, g *gift.CourseGift) error {
	model := models.CourseGiftModelFromDomain(g)
	if err := session(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Save updates a gift with an optimistic version check
func (r *GormGiftRepository) Save(ctx context.Context, g *gift.CourseGift) error {
	model := models.CourseGiftModelFromDomain(g)
	result := session(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", g.ID, g.Version-1).
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

var _ gift.Repository = (*GormGiftRepository)(nil)

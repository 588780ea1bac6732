package persistence

import (
	"context"
	"errors"

	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCourseRepository implements course.Repository using GORM
type GormCourseRepository struct {
	db *gorm.DB
}

// NewGormCourseRepository creates a new GormCourseRepository
func NewGormCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{db: db}
}

// FindByID finds a course by its ID
func (r *GormCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*course.Course, error) {
	var model models.CourseModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a course
func (r *GormCourseRepository) Save(ctx context.Context, c *course.Course) error {
	model := models.CourseModelFromDomain(c)
	return session(ctx, r.db).WithContext(ctx).Save(model).Error
}

var _ course.Repository = (*GormCourseRepository)(nil)

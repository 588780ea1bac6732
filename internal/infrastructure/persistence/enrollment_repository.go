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

// GormEnrollmentRepository implements course.EnrollmentRepository using
// GORM. The (user_id, course_id) unique index backs the one-row-per-pair
// guarantee.
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewGormEnrollmentRepository creates a new GormEnrollmentRepository
func NewGormEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// FindByID finds an enrollment by its ID
func (r *GormEnrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*course.Enrollment, error) {
	var model models.EnrollmentModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUserAndCourse finds the enrollment row for a (user, course) pair
func (r *GormEnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*course.Enrollment, error) {
	var model models.EnrollmentModel
	if err := session(ctx, r.db).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByCourse lists all ENROLLED enrollments of a course
func (r *GormEnrollmentRepository) FindActiveByCourse(ctx context.Context, courseID uuid.UUID) ([]*course.Enrollment, error) {
	var enrollmentModels []models.EnrollmentModel
	if err := session(ctx, r.db).WithContext(ctx).
		Where("course_id = ? AND status = ?", courseID, string(course.EnrollmentEnrolled)).
		Find(&enrollmentModels).Error; err != nil {
		return nil, err
	}
	enrollments := make([]*course.Enrollment, len(enrollmentModels))
	for i := range enrollmentModels {
		enrollments[i] = enrollmentModels[i].ToDomain()
	}
	return enrollments, nil
}

// ListByUser lists all of a user's enrollments, newest first
func (r *GormEnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*course.Enrollment, error) {
	var enrollmentModels []models.EnrollmentModel
	if err := session(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollmentModels).Error; err != nil {
		return nil, err
	}
	enrollments := make([]*course.Enrollment, len(enrollmentModels))
	for i := range enrollmentModels {
		enrollments[i] = enrollmentModels[i].ToDomain()
	}
	return enrollments, nil
}

// CountActiveByCourse counts ENROLLED enrollments of a course
func (r *GormEnrollmentRepository) CountActiveByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := session(ctx, r.db).WithContext(ctx).
		Model(&models.EnrollmentModel{}).
		Where("course_id = ? AND status = ?", courseID, string(course.EnrollmentEnrolled)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new enrollment
func (r *GormEnrollmentRepository) Create(ctx context.Context, enrollment *course.Enrollment) error {
	model := models.EnrollmentModelFromDomain(enrollment)
	if err := session(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// SaveWithLock updates an enrollment with an optimistic version check.
// A concurrent modification leaves zero rows affected and surfaces as a
// concurrency conflict.
func (r *GormEnrollmentRepository) SaveWithLock(ctx context.Context, enrollment *course.Enrollment) error {
	model := models.EnrollmentModelFromDomain(enrollment)
	result := session(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", enrollment.ID, enrollment.Version-1).
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

var _ course.EnrollmentRepository = (*GormEnrollmentRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/coursehub/backend/internal/domain/attendance"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCheckinRepository implements attendance.CheckinRepository using
// GORM. The (session_id, user_id) unique index enforces one checkin per
// user per session even under concurrent requests.
type GormCheckinRepository struct {
	db *gorm.DB
}

// NewGormCheckinRepository creates a new GormCheckinRepository
func NewGormCheckinRepository(db *gorm.DB) *GormCheckinRepository {
	return &GormCheckinRepository{db: db}
}

// Create inserts a checkin record
func (r *GormCheckinRepository) Create(ctx context.Context, checkin *attendance.Checkin) error {
	model := models.CheckinModelFromDomain(checkin)
	if err := session(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Exists reports whether the user already checked in for the session
func (r *GormCheckinRepository) Exists(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := session(ctx, r.db).WithContext(ctx).
		Model(&models.CheckinModel{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByUserAndCourse counts a user's checkins across a course's sessions
func (r *GormCheckinRepository) CountByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := session(ctx, r.db).WithContext(ctx).
		Model(&models.CheckinModel{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ attendance.CheckinRepository = (*GormCheckinRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/coursehub/backend/internal/domain/attendance"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCheckinSessionRepository implements attendance.SessionRepository using GORM
type GormCheckinSessionRepository struct {
	db *gorm.DB
}

// NewGormCheckinSessionRepository creates a new GormCheckinSessionRepository
func NewGormCheckinSessionRepository(db *gorm.DB) *GormCheckinSessionRepository {
	return &GormCheckinSessionRepository{db: db}
}

// FindByID finds a session by its ID
func (r *GormCheckinSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*attendance.CheckinSession, error) {
	var model models.CheckinSessionModel
	if err := session(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByCourseChapter finds the active session for a course and
// chapter. A nil chapter matches the whole-course session.
func (r *GormCheckinSessionRepository) FindActiveByCourseChapter(ctx context.Context, courseID uuid.UUID, chapterID *uuid.UUID) (*attendance.CheckinSession, error) {
	query := session(ctx, r.db).WithContext(ctx).
		Where("course_id = ? AND active = ?", courseID, true)
	if chapterID != nil {
		query = query.Where("chapter_id = ?", *chapterID)
	} else {
		query = query.Where("chapter_id IS NULL")
	}

	var model models.CheckinSessionModel
	if err := query.Order("created_at DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListExpiredActive lists active sessions whose code lifetime has passed
func (r *GormCheckinSessionRepository) ListExpiredActive(ctx context.Context, asOf time.Time) ([]*attendance.CheckinSession, error) {
	var sessionModels []models.CheckinSessionModel
	if err := session(ctx, r.db).WithContext(ctx).
		Where("active = ? AND expires_at < ?", true, asOf).
		Find(&sessionModels).Error; err != nil {
		return nil, err
	}
	sessions := make([]*attendance.CheckinSession, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = sessionModels[i].ToDomain()
	}
	return sessions, nil
}

// Create inserts a new session
func (r *GormCheckinSessionRepository) Create(ctx context.Context, s *attendance.CheckinSession) error {
	model := models.CheckinSessionModelFromDomain(s)
	return session(ctx, r.db).WithContext(ctx).Create(model).Error
}

// Save updates an existing session
func (r *GormCheckinSessionRepository) Save(ctx context.Context, s *attendance.CheckinSession) error {
	model := models.CheckinSessionModelFromDomain(s)
	return session(ctx, r.db).WithContext(ctx).Select("*").Updates(model).Error
}

var _ attendance.SessionRepository = (*GormCheckinSessionRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/coursehub/backend/internal/domain/reward"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAchievementRepository implements reward.AchievementRepository
// using GORM. Upsert rides the (user_id, course_id) unique index, so a
// reissue overwrites the existing row instead of failing.
type GormAchievementRepository struct {
	db *gorm.DB
}

// NewGormAchievementRepository creates a new GormAchievementRepository
func NewGormAchievementRepository(db *gorm.DB) *GormAchievementRepository {
	return &GormAchievementRepository{db: db}
}

// FindByUserAndCourse finds the achievement for a (user, course) pair
func (r *GormAchievementRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*reward.LearningAchievement, error) {
	var model models.LearningAchievementModel
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

// ListByUser lists a user's achievements, newest first
func (r *GormAchievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*reward.LearningAchievement, error) {
	var achievementModels []models.LearningAchievementModel
	if err := session(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&achievementModels).Error; err != nil {
		return nil, err
	}
	achievements := make([]*reward.LearningAchievement, len(achievementModels))
	for i := range achievementModels {
		achievements[i] = achievementModels[i].ToDomain()
	}
	return achievements, nil
}

// Upsert inserts the achievement or overwrites the existing row for the
// same (user, course) pair.
func (r *GormAchievementRepository) Upsert(ctx context.Context, achievement *reward.LearningAchievement) error {
	model := models.LearningAchievementModelFromDomain(achievement)
	return session(ctx, r.db).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"credit", "checkin_count", "issued_by", "issued_at", "remark", "updated_at",
			}),
		}).
		Create(model).Error
}

var _ reward.AchievementRepository = (*GormAchievementRepository)(nil)

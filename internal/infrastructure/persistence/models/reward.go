package models

import (
	"time"

	"github.com/coursehub/backend/internal/domain/reward"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LearningAchievementModel is the persistence model for achievements
type LearningAchievementModel struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_achievements_user_course"`
	CourseID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_achievements_user_course"`
	Credit       decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	CheckinCount int             `gorm:"not null;default:0"`
	IssuedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	IssuedAt     time.Time       `gorm:"not null"`
	Remark       string          `gorm:"type:text"`
}

// TableName specifies the table name
func (LearningAchievementModel) TableName() string {
	return "learning_achievements"
}

// ToDomain converts the model to a domain achievement
func (m *LearningAchievementModel) ToDomain() *reward.LearningAchievement {
	return &reward.LearningAchievement{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		CourseID:     m.CourseID,
		Credit:       m.Credit,
		CheckinCount: m.CheckinCount,
		IssuedBy:     m.IssuedBy,
		IssuedAt:     m.IssuedAt,
		Remark:       m.Remark,
	}
}

// LearningAchievementModelFromDomain converts a domain achievement to a model
func LearningAchievementModelFromDomain(a *reward.LearningAchievement) *LearningAchievementModel {
	m := &LearningAchievementModel{
		UserID:       a.UserID,
		CourseID:     a.CourseID,
		Credit:       a.Credit,
		CheckinCount: a.CheckinCount,
		IssuedBy:     a.IssuedBy,
		IssuedAt:     a.IssuedAt,
		Remark:       a.Remark,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// CompletionRequestModel is the persistence model for completion requests
type CompletionRequestModel struct {
	AggregateModel
	CourseID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	TeacherID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	StudentCount   int        `gorm:"not null;default:0"`
	QualifiedCount int        `gorm:"not null;default:0"`
	Status         string     `gorm:"type:varchar(16);not null;index"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt     *time.Time
	Reason         string `gorm:"type:text"`
}

// TableName specifies the table name
func (CompletionRequestModel) TableName() string {
	return "course_completion_requests"
}

// ToDomain converts the model to a domain completion request
func (m *CompletionRequestModel) ToDomain() *reward.CourseCompletionRequest {
	return &reward.CourseCompletionRequest{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CourseID:          m.CourseID,
		TeacherID:         m.TeacherID,
		StudentCount:      m.StudentCount,
		QualifiedCount:    m.QualifiedCount,
		Status:            reward.CompletionStatus(m.Status),
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
		Reason:            m.Reason,
	}
}

// CompletionRequestModelFromDomain converts a domain completion request to a model
func CompletionRequestModelFromDomain(r *reward.CourseCompletionRequest) *CompletionRequestModel {
	m := &CompletionRequestModel{
		CourseID:       r.CourseID,
		TeacherID:      r.TeacherID,
		StudentCount:   r.StudentCount,
		QualifiedCount: r.QualifiedCount,
		Status:         string(r.Status),
		ReviewedBy:     r.ReviewedBy,
		ReviewedAt:     r.ReviewedAt,
		Reason:         r.Reason,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

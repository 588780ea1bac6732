package models

import (
	"time"

	"github.com/coursehub/backend/internal/domain/attendance"
	"github.com/google/uuid"
)

// CheckinSessionModel is the persistence model for checkin sessions
type CheckinSessionModel struct {
	AggregateModel
	CourseID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_sessions_course_chapter"`
	ChapterID *uuid.UUID `gorm:"type:uuid;index:idx_sessions_course_chapter"`
	Code      string     `gorm:"type:varchar(16);not null"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	Active    bool       `gorm:"not null;default:true;index"`
	ClosedAt  *time.Time
}

// TableName specifies the table name
func (CheckinSessionModel) TableName() string {
	return "checkin_sessions"
}

// ToDomain converts the model to a domain checkin session
func (m *CheckinSessionModel) ToDomain() *attendance.CheckinSession {
	return &attendance.CheckinSession{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CourseID:          m.CourseID,
		ChapterID:         m.ChapterID,
		Code:              m.Code,
		ExpiresAt:         m.ExpiresAt,
		Active:            m.Active,
		ClosedAt:          m.ClosedAt,
	}
}

// CheckinSessionModelFromDomain converts a domain checkin session to a model
func CheckinSessionModelFromDomain(s *attendance.CheckinSession) *CheckinSessionModel {
	m := &CheckinSessionModel{
		CourseID:  s.CourseID,
		ChapterID: s.ChapterID,
		Code:      s.Code,
		ExpiresAt: s.ExpiresAt,
		Active:    s.Active,
		ClosedAt:  s.ClosedAt,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// CheckinModel is the persistence model for attendance records
type CheckinModel struct {
	BaseModel
	SessionID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_checkins_session_user"`
	CourseID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_checkins_course_user"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_checkins_session_user;index:idx_checkins_course_user"`
	Method     string     `gorm:"type:varchar(16);not null"`
	OperatorID *uuid.UUID `gorm:"type:uuid"`
}

// TableName specifies the table name
func (CheckinModel) TableName() string {
	return "checkins"
}

// ToDomain converts the model to a domain checkin
func (m *CheckinModel) ToDomain() *attendance.Checkin {
	return &attendance.Checkin{
		BaseEntity: m.BaseModel.ToDomain(),
		SessionID:  m.SessionID,
		CourseID:   m.CourseID,
		UserID:     m.UserID,
		Method:     attendance.CheckinMethod(m.Method),
		OperatorID: m.OperatorID,
	}
}

// CheckinModelFromDomain converts a domain checkin to a model
func CheckinModelFromDomain(c *attendance.Checkin) *CheckinModel {
	m := &CheckinModel{
		SessionID:  c.SessionID,
		CourseID:   c.CourseID,
		UserID:     c.UserID,
		Method:     string(c.Method),
		OperatorID: c.OperatorID,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

package models

import (
	"time"

	"github.com/coursehub/backend/internal/domain/course"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CourseModel is the persistence model for courses
type CourseModel struct {
	AggregateModel
	Title            string          `gorm:"type:varchar(255);not null"`
	TeacherID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status           string          `gorm:"type:varchar(16);not null;index"`
	CreditType       string          `gorm:"type:varchar(16);not null"`
	Credit           decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	MasterCredit     decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	EnrollStart      *time.Time
	EnrollEnd        *time.Time
	StartTime        time.Time `gorm:"not null"`
	RequiredCheckins int       `gorm:"not null;default:0"`
}

// TableName specifies the table name
func (CourseModel) TableName() string {
	return "courses"
}

// ToDomain converts the model to a domain course
func (m *CourseModel) ToDomain() *course.Course {
	return &course.Course{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
		TeacherID:         m.TeacherID,
		Status:            course.Status(m.Status),
		CreditType:        course.CreditType(m.CreditType),
		Credit:            m.Credit,
		MasterCredit:      m.MasterCredit,
		EnrollStart:       m.EnrollStart,
		EnrollEnd:         m.EnrollEnd,
		StartTime:         m.StartTime,
		RequiredCheckins:  m.RequiredCheckins,
	}
}

// CourseModelFromDomain converts a domain course to a model
func CourseModelFromDomain(c *course.Course) *CourseModel {
	m := &CourseModel{
		Title:            c.Title,
		TeacherID:        c.TeacherID,
		Status:           string(c.Status),
		CreditType:       string(c.CreditType),
		Credit:           c.Credit,
		MasterCredit:     c.MasterCredit,
		EnrollStart:      c.EnrollStart,
		EnrollEnd:        c.EnrollEnd,
		StartTime:        c.StartTime,
		RequiredCheckins: c.RequiredCheckins,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// EnrollmentModel is the persistence model for enrollments
type EnrollmentModel struct {
	AggregateModel
	UserID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course"`
	CourseID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course;index"`
	Status                string    `gorm:"type:varchar(16);not null;index"`
	IsGift                bool      `gorm:"not null;default:false"`
	CheckedIn             bool      `gorm:"not null;default:false"`
	Rated                 bool      `gorm:"not null;default:false"`
	CompletionPosterShown bool      `gorm:"not null;default:false"`
	CompletedAt           *time.Time
	CancelledAt           *time.Time
}

// TableName specifies the table name
func (EnrollmentModel) TableName() string {
	return "enrollments"
}

// ToDomain converts the model to a domain enrollment
func (m *EnrollmentModel) ToDomain() *course.Enrollment {
	return &course.Enrollment{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		UserID:                m.UserID,
		CourseID:              m.CourseID,
		Status:                course.EnrollmentStatus(m.Status),
		IsGift:                m.IsGift,
		CheckedIn:             m.CheckedIn,
		Rated:                 m.Rated,
		CompletionPosterShown: m.CompletionPosterShown,
		CompletedAt:           m.CompletedAt,
		CancelledAt:           m.CancelledAt,
	}
}

// EnrollmentModelFromDomain converts a domain enrollment to a model
func EnrollmentModelFromDomain(e *course.Enrollment) *EnrollmentModel {
	m := &EnrollmentModel{
		UserID:                e.UserID,
		CourseID:              e.CourseID,
		Status:                string(e.Status),
		IsGift:                e.IsGift,
		CheckedIn:             e.CheckedIn,
		Rated:                 e.Rated,
		CompletionPosterShown: e.CompletionPosterShown,
		CompletedAt:           e.CompletedAt,
		CancelledAt:           e.CancelledAt,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}

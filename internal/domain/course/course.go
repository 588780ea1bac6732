package course

import (
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a course
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusArchived
}

// CreditType selects which price field applies to a course
type CreditType string

const (
	CreditTypeNormal CreditType = "NORMAL"
	CreditTypeMaster CreditType = "MASTER"
)

// Course is the course aggregate. Only the pricing, enrollment window,
// attendance threshold and archival state matter to this core; content
// lives elsewhere.
type Course struct {
	shared.BaseAggregateRoot
	Title            string
	TeacherID        uuid.UUID
	Status           Status
	CreditType       CreditType
	Credit           decimal.Decimal // legacy single price field, also the NORMAL price
	MasterCredit     decimal.Decimal
	EnrollStart      *time.Time
	EnrollEnd        *time.Time
	StartTime        time.Time
	RequiredCheckins int
}

// NewCourse creates an active course
func NewCourse(title string, teacherID uuid.UUID, creditType CreditType, credit decimal.Decimal, startTime time.Time) (*Course, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Course title cannot be empty")
	}
	if teacherID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEACHER", "Teacher ID cannot be empty")
	}
	if credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CREDIT", "Course credit cannot be negative")
	}
	if creditType == "" {
		creditType = CreditTypeNormal
	}
	return &Course{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		TeacherID:         teacherID,
		Status:            StatusActive,
		CreditType:        creditType,
		Credit:            credit,
		StartTime:         startTime,
	}, nil
}

// RequiredCredit returns the credit cost of enrolling. MASTER courses
// use the master price when one is set; everything else falls back to
// the legacy single credit field.
func (c *Course) RequiredCredit() decimal.Decimal {
	if c.CreditType == CreditTypeMaster && c.MasterCredit.IsPositive() {
		return c.MasterCredit
	}
	return c.Credit
}

// EnrollmentOpen reports whether the enrollment window contains now.
// Unset bounds leave that side of the window open.
func (c *Course) EnrollmentOpen(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if c.EnrollStart != nil && now.Before(*c.EnrollStart) {
		return false
	}
	if c.EnrollEnd != nil && now.After(*c.EnrollEnd) {
		return false
	}
	return true
}

// IsArchived returns true once the course has been completed and archived
func (c *Course) IsArchived() bool {
	return c.Status == StatusArchived
}

// Archive marks the course as completed
func (c *Course) Archive() error {
	if c.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Course is already archived")
	}
	c.Status = StatusArchived
	c.Touch()
	return nil
}

// IsTaughtBy reports whether the given user is the course's teacher
func (c *Course) IsTaughtBy(userID uuid.UUID) bool {
	return c.TeacherID == userID
}

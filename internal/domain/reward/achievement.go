package reward

import (
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LearningAchievement records the completion award for one user on one
// course. There is at most one per (user, course); reissuing overwrites
// the existing row instead of accumulating.
type LearningAchievement struct {
	shared.BaseEntity
	UserID       uuid.UUID
	CourseID     uuid.UUID
	Credit       decimal.Decimal
	CheckinCount int
	IssuedBy     uuid.UUID
	IssuedAt     time.Time
	Remark       string
}

// NewLearningAchievement creates an achievement for a user on a course
func NewLearningAchievement(userID, courseID, issuedBy uuid.UUID, credit decimal.Decimal, checkinCount int, remark string) (*LearningAchievement, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course ID cannot be empty")
	}
	if issuedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ISSUER", "Issuer ID cannot be empty")
	}
	if credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CREDIT", "Awarded credit cannot be negative")
	}
	return &LearningAchievement{
		BaseEntity:   shared.NewBaseEntity(),
		UserID:       userID,
		CourseID:     courseID,
		Credit:       credit,
		CheckinCount: checkinCount,
		IssuedBy:     issuedBy,
		IssuedAt:     time.Now(),
		Remark:       remark,
	}, nil
}

// Override replaces the awarded fields on reissue. The row identity
// stays; the previous award is not kept.
func (a *LearningAchievement) Override(credit decimal.Decimal, checkinCount int, issuedBy uuid.UUID, remark string) {
	a.Credit = credit
	a.CheckinCount = checkinCount
	a.IssuedBy = issuedBy
	a.IssuedAt = time.Now()
	a.Remark = remark
	a.UpdatedAt = time.Now()
}

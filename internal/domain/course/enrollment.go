package course

import (
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EnrollmentStatus represents the state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "ENROLLED"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentCompleted, EnrollmentCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for COMPLETED and CANCELLED
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentCompleted || s == EnrollmentCancelled
}

// Enrollment ties a user to a course. There is at most one row per
// (user, course); a cancelled enrollment is reactivated on re-enroll
// rather than duplicated.
type Enrollment struct {
	shared.BaseAggregateRoot
	UserID                uuid.UUID
	CourseID              uuid.UUID
	Status                EnrollmentStatus
	IsGift                bool
	CheckedIn             bool
	Rated                 bool
	CompletionPosterShown bool
	CompletedAt           *time.Time
	CancelledAt           *time.Time
}

// NewEnrollment creates an enrollment in the ENROLLED state
func NewEnrollment(userID, courseID uuid.UUID, isGift bool) (*Enrollment, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course ID cannot be empty")
	}
	return &Enrollment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		CourseID:          courseID,
		Status:            EnrollmentEnrolled,
		IsGift:            isGift,
	}, nil
}

// Active returns true while the enrollment is in the ENROLLED state
func (e *Enrollment) Active() bool {
	return e.Status == EnrollmentEnrolled
}

// Complete transitions ENROLLED to COMPLETED
func (e *Enrollment) Complete() error {
	if e.Status != EnrollmentEnrolled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete enrollment in %s status", e.Status))
	}
	now := time.Now()
	e.Status = EnrollmentCompleted
	e.CompletedAt = &now
	e.Touch()
	return nil
}

// Cancel transitions ENROLLED to CANCELLED. The row is kept so the
// enrollment can be reactivated later.
func (e *Enrollment) Cancel() error {
	if e.Status != EnrollmentEnrolled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel enrollment in %s status", e.Status))
	}
	now := time.Now()
	e.Status = EnrollmentCancelled
	e.CancelledAt = &now
	e.Touch()
	return nil
}

// Reactivate returns a CANCELLED enrollment to ENROLLED, resetting the
// per-run flags.
func (e *Enrollment) Reactivate(isGift bool) error {
	if e.Status != EnrollmentCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reactivate enrollment in %s status", e.Status))
	}
	e.Status = EnrollmentEnrolled
	e.IsGift = isGift
	e.CheckedIn = false
	e.Rated = false
	e.CompletionPosterShown = false
	e.CompletedAt = nil
	e.CancelledAt = nil
	e.Touch()
	return nil
}

// MarkCheckedIn records that the user has checked in at least once
func (e *Enrollment) MarkCheckedIn() {
	if e.CheckedIn {
		return
	}
	e.CheckedIn = true
	e.Touch()
}

// MarkRated records that the user has rated the course
func (e *Enrollment) MarkRated() {
	if e.Rated {
		return
	}
	e.Rated = true
	e.Touch()
}

// MarkPosterShown records that the completion poster was displayed
func (e *Enrollment) MarkPosterShown() {
	if e.CompletionPosterShown {
		return
	}
	e.CompletionPosterShown = true
	e.Touch()
}

package reward

import (
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompletionStatus represents the state of a course completion request
type CompletionStatus string

const (
	CompletionPending   CompletionStatus = "PENDING"
	CompletionApproved  CompletionStatus = "APPROVED"
	CompletionRejected  CompletionStatus = "REJECTED"
	CompletionCancelled CompletionStatus = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s CompletionStatus) IsValid() bool {
	switch s {
	case CompletionPending, CompletionApproved, CompletionRejected, CompletionCancelled:
		return true
	}
	return false
}

// CourseCompletionRequest is a teacher's request to close out a course.
// At most one PENDING request exists per course. The student/qualified
// counts are a snapshot for the reviewer; the qualified set is
// recomputed at approval time.
type CourseCompletionRequest struct {
	shared.BaseAggregateRoot
	CourseID       uuid.UUID
	TeacherID      uuid.UUID
	StudentCount   int
	QualifiedCount int
	Status         CompletionStatus
	ReviewedBy     *uuid.UUID
	ReviewedAt     *time.Time
	Reason         string
}

// NewCourseCompletionRequest creates a pending completion request
func NewCourseCompletionRequest(courseID, teacherID uuid.UUID, studentCount, qualifiedCount int) (*CourseCompletionRequest, error) {
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course ID cannot be empty")
	}
	if teacherID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEACHER", "Teacher ID cannot be empty")
	}
	return &CourseCompletionRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CourseID:          courseID,
		TeacherID:         teacherID,
		StudentCount:      studentCount,
		QualifiedCount:    qualifiedCount,
		Status:            CompletionPending,
	}, nil
}

// Approve transitions PENDING to APPROVED
func (r *CourseCompletionRequest) Approve(reviewerID uuid.UUID) error {
	if err := r.requirePending("approve"); err != nil {
		return err
	}
	now := time.Now()
	r.Status = CompletionApproved
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.Touch()
	return nil
}

// Reject transitions PENDING to REJECTED
func (r *CourseCompletionRequest) Reject(reviewerID uuid.UUID, reason string) error {
	if err := r.requirePending("reject"); err != nil {
		return err
	}
	now := time.Now()
	r.Status = CompletionRejected
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.Reason = reason
	r.Touch()
	return nil
}

// Cancel withdraws a PENDING request
func (r *CourseCompletionRequest) Cancel() error {
	if err := r.requirePending("cancel"); err != nil {
		return err
	}
	r.Status = CompletionCancelled
	r.Touch()
	return nil
}

func (r *CourseCompletionRequest) requirePending(action string) error {
	if r.Status != CompletionPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot %s completion request in %s status", action, r.Status))
	}
	return nil
}

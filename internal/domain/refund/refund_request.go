package refund

import (
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinLeadTime is the minimum gap between requesting a refund and the
// course start. Requests inside this window are rejected.
const MinLeadTime = 72 * time.Hour

// Status represents the state of a refund request
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request is a time-gated cancellation of an enrollment. The credit
// amount to refund is frozen at creation; at most one PENDING request
// exists per enrollment.
type Request struct {
	shared.BaseAggregateRoot
	EnrollmentID uuid.UUID
	UserID       uuid.UUID
	CourseID     uuid.UUID
	CreditAmount decimal.Decimal
	Status       Status
	ReviewedBy   *uuid.UUID
	ReviewedAt   *time.Time
	Reason       string
}

// NewRequest creates a pending refund request freezing the amount to
// be refunded.
func NewRequest(enrollmentID, userID, courseID uuid.UUID, creditAmount decimal.Decimal) (*Request, error) {
	if enrollmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENROLLMENT", "Enrollment ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course ID cannot be empty")
	}
	if creditAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount cannot be negative")
	}
	return &Request{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EnrollmentID:      enrollmentID,
		UserID:            userID,
		CourseID:          courseID,
		CreditAmount:      creditAmount,
		Status:            StatusPending,
	}, nil
}

// Approve transitions PENDING to APPROVED
func (r *Request) Approve(reviewerID uuid.UUID) error {
	if err := r.requirePending("approve"); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusApproved
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.Touch()
	return nil
}

// Reject transitions PENDING to REJECTED
func (r *Request) Reject(reviewerID uuid.UUID, reason string) error {
	if err := r.requirePending("reject"); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusRejected
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.Reason = reason
	r.Touch()
	return nil
}

func (r *Request) requirePending(action string) error {
	if r.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot %s refund request in %s status", action, r.Status))
	}
	return nil
}

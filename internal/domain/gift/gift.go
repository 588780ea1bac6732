package gift

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the state of a course gift
type Status string

const (
	StatusPending  Status = "PENDING"  // code generated, no recipient yet
	StatusAccepted Status = "ACCEPTED" // claimed, enrollment created
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusAccepted
}

// CourseGift is the escrow record of a gifted enrollment. The sender's
// credit is debited when the gift is created; the enrollment is created
// when the code is claimed. Codes are single-use and unique at the
// storage layer.
type CourseGift struct {
	shared.BaseAggregateRoot
	CourseID    uuid.UUID
	SenderID    uuid.UUID
	RecipientID *uuid.UUID
	Code        string
	Credit      decimal.Decimal
	Status      Status
	AcceptedAt  *time.Time
}

// NewCourseGift creates a pending gift with a fresh claim code
func NewCourseGift(courseID, senderID uuid.UUID, credit decimal.Decimal) (*CourseGift, error) {
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course ID cannot be empty")
	}
	if senderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SENDER", "Sender ID cannot be empty")
	}
	if credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Gift credit cannot be negative")
	}
	return &CourseGift{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CourseID:          courseID,
		SenderID:          senderID,
		Code:              NewGiftCode(),
		Credit:            credit,
		Status:            StatusPending,
	}, nil
}

// NewDirectGift creates an already-accepted gift against a named
// recipient, skipping the PENDING code flow.
func NewDirectGift(courseID, senderID, recipientID uuid.UUID, credit decimal.Decimal) (*CourseGift, error) {
	g, err := NewCourseGift(courseID, senderID, credit)
	if err != nil {
		return nil, err
	}
	if recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient ID cannot be empty")
	}
	now := time.Now()
	g.RecipientID = &recipientID
	g.Status = StatusAccepted
	g.AcceptedAt = &now
	return g, nil
}

// Accept binds the gift to its claimer. Claiming a non-pending gift is
// a conflict: codes are single-use.
func (g *CourseGift) Accept(recipientID uuid.UUID) error {
	if g.Status != StatusPending {
		return shared.NewDomainError(shared.ErrConflict.Code, "Gift code has already been used")
	}
	if recipientID == uuid.Nil {
		return shared.NewDomainError("INVALID_RECIPIENT", "Recipient ID cannot be empty")
	}
	now := time.Now()
	g.RecipientID = &recipientID
	g.Status = StatusAccepted
	g.AcceptedAt = &now
	g.Touch()
	return nil
}

// NewGiftCode returns a random single-use claim code
func NewGiftCode() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

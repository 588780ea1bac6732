package attendance

import (
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CheckinMethod records how an attendance entry was produced. Makeup
// checkins are staff-inserted but count identically toward
// qualification.
type CheckinMethod string

const (
	MethodSelf   CheckinMethod = "SELF"
	MethodMakeup CheckinMethod = "MAKEUP"
)

// IsValid checks if the method is a known value
func (m CheckinMethod) IsValid() bool {
	return m == MethodSelf || m == MethodMakeup
}

// Checkin is one attendance record. Uniqueness of (session, user) is
// enforced by the storage layer.
type Checkin struct {
	shared.BaseEntity
	SessionID  uuid.UUID
	CourseID   uuid.UUID
	UserID     uuid.UUID
	Method     CheckinMethod
	OperatorID *uuid.UUID // staff member, for makeup checkins
}

// NewSelfCheckin records a student's own checkin against a session
func NewSelfCheckin(session *CheckinSession, userID uuid.UUID) (*Checkin, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return &Checkin{
		BaseEntity: shared.NewBaseEntity(),
		SessionID:  session.ID,
		CourseID:   session.CourseID,
		UserID:     userID,
		Method:     MethodSelf,
	}, nil
}

// NewMakeupCheckin records a staff-inserted checkin for a student
func NewMakeupCheckin(session *CheckinSession, userID, operatorID uuid.UUID) (*Checkin, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator ID cannot be empty")
	}
	return &Checkin{
		BaseEntity: shared.NewBaseEntity(),
		SessionID:  session.ID,
		CourseID:   session.CourseID,
		UserID:     userID,
		Method:     MethodMakeup,
		OperatorID: &operatorID,
	}, nil
}

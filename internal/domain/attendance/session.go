package attendance

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CheckinSession is one attendance round for a course (optionally a
// single chapter). Students check in against its code until it expires
// or is closed. At most one session per course/chapter is active at a
// time.
type CheckinSession struct {
	shared.BaseAggregateRoot
	CourseID  uuid.UUID
	ChapterID *uuid.UUID
	Code      string
	ExpiresAt time.Time
	Active    bool
	ClosedAt  *time.Time
}

// NewCheckinSession opens a session with the given code and lifetime
func NewCheckinSession(courseID uuid.UUID, chapterID *uuid.UUID, code string, ttl time.Duration) (*CheckinSession, error) {
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Checkin code cannot be empty")
	}
	if ttl <= 0 {
		return nil, shared.NewDomainError("INVALID_TTL", "Session lifetime must be positive")
	}
	return &CheckinSession{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CourseID:          courseID,
		ChapterID:         chapterID,
		Code:              code,
		ExpiresAt:         time.Now().Add(ttl),
		Active:            true,
	}, nil
}

// Expired reports whether the session's code lifetime has passed
func (s *CheckinSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// AcceptsCheckin reports whether a self checkin is still possible
func (s *CheckinSession) AcceptsCheckin(now time.Time) bool {
	return s.Active && !s.Expired(now)
}

// Close deactivates the session
func (s *CheckinSession) Close() error {
	if !s.Active {
		return shared.NewDomainError("INVALID_STATE", "Session is already closed")
	}
	now := time.Now()
	s.Active = false
	s.ClosedAt = &now
	s.Touch()
	return nil
}

// NewSessionCode returns a random checkin code
func NewSessionCode() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

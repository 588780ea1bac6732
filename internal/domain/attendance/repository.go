package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRepository persists checkin sessions
type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CheckinSession, error)
	// FindActiveByCourseChapter returns the active session for a
	// course/chapter pair, or ErrNotFound when none is open.
	FindActiveByCourseChapter(ctx context.Context, courseID uuid.UUID, chapterID *uuid.UUID) (*CheckinSession, error)
	ListExpiredActive(ctx context.Context, asOf time.Time) ([]*CheckinSession, error)
	Create(ctx context.Context, session *CheckinSession) error
	Save(ctx context.Context, session *CheckinSession) error
}

// CheckinRepository persists attendance records
type CheckinRepository interface {
	Create(ctx context.Context, checkin *Checkin) error
	Exists(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
	CountByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (int64, error)
}

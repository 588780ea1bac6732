package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/domain/attendance"
	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTTL is the code lifetime used when a session is
// started without an explicit one.
const DefaultSessionTTL = 10 * time.Minute

// Service tracks attendance and answers qualification queries for the
// completion engine.
type Service struct {
	sessions    attendance.SessionRepository
	checkins    attendance.CheckinRepository
	courses     course.Repository
	enrollments course.EnrollmentRepository
	tx          shared.TransactionManager
	notifier    shared.Notifier
	logger      *zap.Logger
}

// NewService creates an attendance service
func NewService(
	sessions attendance.SessionRepository,
	checkins attendance.CheckinRepository,
	courses course.Repository,
	enrollments course.EnrollmentRepository,
	tx shared.TransactionManager,
	notifier shared.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessions:    sessions,
		checkins:    checkins,
		courses:     courses,
		enrollments: enrollments,
		tx:          tx,
		notifier:    notifier,
		logger:      logger,
	}
}

// StartSessionRequest opens a new checkin session
type StartSessionRequest struct {
	CourseID  uuid.UUID
	ChapterID *uuid.UUID
	Code      string        // generated when empty
	TTL       time.Duration // DefaultSessionTTL when zero
}

// StartSession opens a checkin session for a course/chapter. The prior
// session for the same pair must be closed or expired; an expired one
// is closed on the way.
func (s *Service) StartSession(ctx context.Context, operatorID uuid.UUID, req StartSessionRequest) (*attendance.CheckinSession, error) {
	c, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !c.IsTaughtBy(operatorID) {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "Only the course teacher can start a checkin session")
	}

	now := time.Now()
	prior, err := s.sessions.FindActiveByCourseChapter(ctx, req.CourseID, req.ChapterID)
	if err == nil {
		if prior.AcceptsCheckin(now) {
			return nil, shared.NewDomainError(shared.ErrConflict.Code, "An active checkin session already exists for this course")
		}
		if closeErr := prior.Close(); closeErr == nil {
			if saveErr := s.sessions.Save(ctx, prior); saveErr != nil {
				return nil, fmt.Errorf("failed to close expired session: %w", saveErr)
			}
		}
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("failed to load prior session: %w", err)
	}

	code := req.Code
	if code == "" {
		code = attendance.NewSessionCode()
	}
	ttl := req.TTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	session, err := attendance.NewCheckinSession(req.CourseID, req.ChapterID, code, ttl)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// CheckIn records a student's own checkin against the active session
// for the course/chapter. The code must match and the session must not
// have expired; a user checks in at most once per session.
func (s *Service) CheckIn(ctx context.Context, userID, courseID uuid.UUID, chapterID *uuid.UUID, code string) (*attendance.Checkin, error) {
	session, err := s.sessions.FindActiveByCourseChapter(ctx, courseID, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.AcceptsCheckin(time.Now()) {
		return nil, shared.NewDomainError("INVALID_STATE", "Checkin session has expired")
	}
	if session.Code != code {
		return nil, shared.NewDomainError("INVALID_CODE", "Checkin code does not match")
	}

	checkin, err := s.record(ctx, session, userID, func() (*attendance.Checkin, error) {
		return attendance.NewSelfCheckin(session, userID)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, shared.NotifyCheckinSuccess, map[string]any{
		"course_id":  courseID.String(),
		"session_id": session.ID.String(),
	})
	return checkin, nil
}

// MakeupCheckin inserts a staff checkin for a student. It is recorded
// with its own method but counts identically toward qualification, and
// is allowed even after the session expired.
func (s *Service) MakeupCheckin(ctx context.Context, operatorID, sessionID, userID uuid.UUID) (*attendance.Checkin, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	c, err := s.courses.FindByID(ctx, session.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !c.IsTaughtBy(operatorID) {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "Only the course teacher can insert makeup checkins")
	}
	return s.record(ctx, session, userID, func() (*attendance.Checkin, error) {
		return attendance.NewMakeupCheckin(session, userID, operatorID)
	})
}

// BatchMakeupCheckin inserts makeup checkins for several students,
// reporting per-item outcomes instead of aborting on first error.
func (s *Service) BatchMakeupCheckin(ctx context.Context, operatorID, sessionID uuid.UUID, userIDs []uuid.UUID) *shared.BatchOutcome {
	outcome := &shared.BatchOutcome{}
	for _, userID := range userIDs {
		if _, err := s.MakeupCheckin(ctx, operatorID, sessionID, userID); err != nil {
			outcome.AddFailure(userID, err)
			continue
		}
		outcome.AddSuccess()
	}
	return outcome
}

// record validates enrollment and writes the checkin plus the
// enrollment's checked-in flag in one transaction.
func (s *Service) record(ctx context.Context, session *attendance.CheckinSession, userID uuid.UUID, build func() (*attendance.Checkin, error)) (*attendance.Checkin, error) {
	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, session.CourseID)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError(shared.ErrForbidden.Code, "User is not enrolled in this course")
		}
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if !enrollment.Active() {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "User is not enrolled in this course")
	}

	exists, err := s.checkins.Exists(ctx, session.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing checkin: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrConflict.Code, "User has already checked in for this session")
	}

	checkin, err := build()
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkins.Create(ctx, checkin); err != nil {
			return fmt.Errorf("failed to create checkin: %w", err)
		}
		if !enrollment.CheckedIn {
			enrollment.MarkCheckedIn()
			if err := s.enrollments.SaveWithLock(ctx, enrollment); err != nil {
				return fmt.Errorf("failed to save enrollment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkin, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// CloseExpiredSessions closes every active session whose code lifetime
// has passed and returns how many were closed. It is invoked by an
// external periodic trigger; the core never schedules it itself.
func (s *Service) CloseExpiredSessions(ctx context.Context) (int, error) {
	expired, err := s.sessions.ListExpiredActive(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	closed := 0
	for _, session := range expired {
		if err := session.Close(); err != nil {
			continue
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.Error("Failed to close expired session",
				zap.String("session_id", session.ID.String()),
				zap.Error(err),
			)
			continue
		}
		closed++
	}
	return closed, nil
}

// CheckinCount returns how many sessions of a course the user attended
func (s *Service) CheckinCount(ctx context.Context, userID, courseID uuid.UUID) (int64, error) {
	return s.checkins.CountByUserAndCourse(ctx, userID, courseID)
}

// Qualified reports whether the user's attendance meets the course
// threshold. A course requiring zero checkins qualifies everyone.
func (s *Service) Qualified(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to load course: %w", err)
	}
	if c.RequiredCheckins <= 0 {
		return true, nil
	}
	count, err := s.checkins.CountByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to count checkins: %w", err)
	}
	return count >= int64(c.RequiredCheckins), nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, kind shared.NotificationKind, payload map[string]any) {
	if err := s.notifier.Notify(ctx, userID, kind, payload); err != nil {
		s.logger.Warn("Notification delivery failed",
			zap.String("user_id", userID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

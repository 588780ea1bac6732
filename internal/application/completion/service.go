package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/reward"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttendanceReader answers qualification queries for the cascade
type AttendanceReader interface {
	Qualified(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	CheckinCount(ctx context.Context, userID, courseID uuid.UUID) (int64, error)
}

// Service owns the course completion workflow: a teacher requests
// close-out, an admin reviews it, and approval cascades completions and
// achievements over the qualified students.
type Service struct {
	requests     reward.CompletionRequestRepository
	achievements reward.AchievementRepository
	courses      course.Repository
	enrollments  course.EnrollmentRepository
	attendance   AttendanceReader
	tx           shared.TransactionManager
	notifier     shared.Notifier
	logger       *zap.Logger
}

// NewService creates a completion service
func NewService(
	requests reward.CompletionRequestRepository,
	achievements reward.AchievementRepository,
	courses course.Repository,
	enrollments course.EnrollmentRepository,
	attendance AttendanceReader,
	tx shared.TransactionManager,
	notifier shared.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		requests:     requests,
		achievements: achievements,
		courses:      courses,
		enrollments:  enrollments,
		attendance:   attendance,
		tx:           tx,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateCompletionRequest files a close-out request for a course. Only
// the course teacher may file one, and only one PENDING request exists
// per course. The student and qualified counts are snapshots for the
// reviewer; the real qualified set is recomputed at approval.
func (s *Service) CreateCompletionRequest(ctx context.Context, teacherID, courseID uuid.UUID) (*reward.CourseCompletionRequest, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !c.IsTaughtBy(teacherID) {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "Only the course teacher can request completion")
	}
	if c.Status == course.StatusArchived {
		return nil, shared.NewDomainError("INVALID_STATE", "Course has already been completed")
	}
	if _, err := s.requests.FindPendingByCourse(ctx, courseID); err == nil {
		return nil, shared.NewDomainError(shared.ErrConflict.Code, "A pending completion request already exists for this course")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}

	active, err := s.enrollments.FindActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	qualified := 0
	for _, e := range active {
		ok, err := s.attendance.Qualified(ctx, e.UserID, courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to check qualification: %w", err)
		}
		if ok {
			qualified++
		}
	}

	request, err := reward.NewCourseCompletionRequest(courseID, teacherID, len(active), qualified)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	return request, nil
}

// CancelCompletionRequest withdraws a PENDING request. Only the teacher
// who filed it may cancel.
func (s *Service) CancelCompletionRequest(ctx context.Context, teacherID, requestID uuid.UUID) error {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to load completion request: %w", err)
	}
	if request.TeacherID != teacherID {
		return shared.NewDomainError(shared.ErrForbidden.Code, "Only the requesting teacher can cancel")
	}
	if err := request.Cancel(); err != nil {
		return err
	}
	if err := s.requests.Save(ctx, request); err != nil {
		return fmt.Errorf("failed to save completion request: %w", err)
	}
	return nil
}

// ReviewResult reports the outcome of an approval, including the parts
// of the cascade that failed. An approved request stays approved even
// when some cascade steps fail; the failures are surfaced here for
// manual repair.
type ReviewResult struct {
	Request            *reward.CourseCompletionRequest `json:"request"`
	Completed          int                             `json:"completed"`
	AchievementsIssued int                             `json:"achievements_issued"`
	Failures           []shared.ItemFailure            `json:"failures,omitempty"`
}

// ReviewCompletionRequest approves or rejects a pending request. On
// approval the request flips to APPROVED and the course is archived in
// one transaction; then the qualified set is recomputed and each
// qualified student's enrollment is completed and their achievement
// upserted, best effort.
func (s *Service) ReviewCompletionRequest(ctx context.Context, reviewerID, requestID uuid.UUID, approve bool, reason string) (*ReviewResult, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion request: %w", err)
	}

	if !approve {
		if err := request.Reject(reviewerID, reason); err != nil {
			return nil, err
		}
		if err := s.requests.Save(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to save completion request: %w", err)
		}
		s.notify(ctx, request.TeacherID, shared.NotifyCompletionDecision, map[string]any{
			"request_id": request.ID.String(),
			"approved":   false,
			"reason":     reason,
		})
		return &ReviewResult{Request: request}, nil
	}

	c, err := s.courses.FindByID(ctx, request.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	// The approval and the course archive commit together; the cascade
	// below never rolls them back.
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := request.Approve(reviewerID); err != nil {
			return err
		}
		if err := s.requests.Save(ctx, request); err != nil {
			return fmt.Errorf("failed to save completion request: %w", err)
		}
		if err := c.Archive(); err == nil {
			if err := s.courses.Save(ctx, c); err != nil {
				return fmt.Errorf("failed to archive course: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ReviewResult{Request: request}
	s.cascade(ctx, c, reviewerID, result)

	s.notify(ctx, request.TeacherID, shared.NotifyCourseCompleted, map[string]any{
		"course_id":    c.ID.String(),
		"course_title": c.Title,
	})
	return result, nil
}

// cascade completes enrollments and issues achievements for every
// qualified student. Each student is processed independently; a failure
// is recorded and the loop moves on.
func (s *Service) cascade(ctx context.Context, c *course.Course, reviewerID uuid.UUID, result *ReviewResult) {
	active, err := s.enrollments.FindActiveByCourse(ctx, c.ID)
	if err != nil {
		s.logger.Error("Completion cascade could not list enrollments",
			zap.String("course_id", c.ID.String()),
			zap.Error(err),
		)
		result.Failures = append(result.Failures, shared.ItemFailure{ID: c.ID, Reason: err.Error()})
		return
	}

	for _, e := range active {
		ok, err := s.attendance.Qualified(ctx, e.UserID, c.ID)
		if err != nil {
			result.Failures = append(result.Failures, shared.ItemFailure{ID: e.UserID, Reason: err.Error()})
			continue
		}
		if !ok {
			continue
		}

		if err := s.completeOne(ctx, c, e, reviewerID); err != nil {
			s.logger.Warn("Completion cascade step failed",
				zap.String("user_id", e.UserID.String()),
				zap.String("course_id", c.ID.String()),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, shared.ItemFailure{ID: e.UserID, Reason: err.Error()})
			continue
		}
		result.Completed++
		result.AchievementsIssued++

		s.notify(ctx, e.UserID, shared.NotifyAchievementIssued, map[string]any{
			"course_id":    c.ID.String(),
			"course_title": c.Title,
		})
	}
}

// completeOne flips one enrollment to COMPLETED and upserts the
// student's achievement in a single transaction.
func (s *Service) completeOne(ctx context.Context, c *course.Course, e *course.Enrollment, reviewerID uuid.UUID) error {
	count, err := s.attendance.CheckinCount(ctx, e.UserID, c.ID)
	if err != nil {
		return fmt.Errorf("failed to count checkins: %w", err)
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := e.Complete(); err != nil {
			return err
		}
		if err := s.enrollments.SaveWithLock(ctx, e); err != nil {
			return fmt.Errorf("failed to save enrollment: %w", err)
		}
		return s.issue(ctx, e.UserID, c, reviewerID, int(count), "Course completion")
	})
}

// issue upserts the (user, course) achievement, overriding a prior one
func (s *Service) issue(ctx context.Context, userID uuid.UUID, c *course.Course, issuedBy uuid.UUID, checkinCount int, remark string) error {
	existing, err := s.achievements.FindByUserAndCourse(ctx, userID, c.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to load achievement: %w", err)
	}
	if existing != nil {
		existing.Override(c.RequiredCredit(), checkinCount, issuedBy, remark)
		if err := s.achievements.Upsert(ctx, existing); err != nil {
			return fmt.Errorf("failed to save achievement: %w", err)
		}
		return nil
	}
	achievement, err := reward.NewLearningAchievement(userID, c.ID, issuedBy, c.RequiredCredit(), checkinCount, remark)
	if err != nil {
		return err
	}
	if err := s.achievements.Upsert(ctx, achievement); err != nil {
		return fmt.Errorf("failed to save achievement: %w", err)
	}
	return nil
}

// IssueAchievements issues or reissues achievements for a set of
// students by hand, outside the approval cascade. Per-item failures are
// reported instead of aborting the batch.
func (s *Service) IssueAchievements(ctx context.Context, operatorID, courseID uuid.UUID, userIDs []uuid.UUID, remark string) *shared.BatchOutcome {
	outcome := &shared.BatchOutcome{}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		for _, userID := range userIDs {
			outcome.AddFailure(userID, err)
		}
		return outcome
	}
	for _, userID := range userIDs {
		if err := s.issueForUser(ctx, c, operatorID, userID, remark); err != nil {
			outcome.AddFailure(userID, err)
			continue
		}
		outcome.AddSuccess()
	}
	return outcome
}

func (s *Service) issueForUser(ctx context.Context, c *course.Course, operatorID, userID uuid.UUID, remark string) error {
	e, err := s.enrollments.FindByUserAndCourse(ctx, userID, c.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_STATE", "User is not enrolled in this course")
		}
		return fmt.Errorf("failed to load enrollment: %w", err)
	}
	if e.Status == course.EnrollmentCancelled {
		return shared.NewDomainError("INVALID_STATE", "Enrollment has been cancelled")
	}
	count, err := s.attendance.CheckinCount(ctx, userID, c.ID)
	if err != nil {
		return fmt.Errorf("failed to count checkins: %w", err)
	}
	return s.issue(ctx, userID, c, operatorID, int(count), remark)
}

// ListAchievements returns a user's achievements
func (s *Service) ListAchievements(ctx context.Context, userID uuid.UUID) ([]*reward.LearningAchievement, error) {
	return s.achievements.ListByUser(ctx, userID)
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

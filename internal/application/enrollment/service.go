package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerapp "github.com/coursehub/backend/internal/application/ledger"
	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/ledger"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditLedger is the slice of the ledger the enrollment engine needs
type CreditLedger interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (*ledger.CreditAccount, error)
	Consume(ctx context.Context, req ledgerapp.ConsumeRequest) (*ledgerapp.MutationResult, error)
}

// Service gates course enrollment on the credit ledger and owns
// enrollment state.
type Service struct {
	courses      course.Repository
	enrollments  course.EnrollmentRepository
	creditLedger CreditLedger
	tx           shared.TransactionManager
	notifier     shared.Notifier
	logger       *zap.Logger
}

// NewService creates an enrollment service
func NewService(
	courses course.Repository,
	enrollments course.EnrollmentRepository,
	creditLedger CreditLedger,
	tx shared.TransactionManager,
	notifier shared.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		courses:      courses,
		enrollments:  enrollments,
		creditLedger: creditLedger,
		tx:           tx,
		notifier:     notifier,
		logger:       logger,
	}
}

// EnrollResult is the outcome of an enrollment attempt. Insufficient
// credit is reported as a result, not an error, so callers can branch
// to a manual request-and-approve flow.
type EnrollResult struct {
	Enrollment         *course.Enrollment `json:"enrollment,omitempty"`
	AlreadyEnrolled    bool               `json:"already_enrolled"`
	InsufficientCredit bool               `json:"insufficient_credit"`
	RequiredCredit     decimal.Decimal    `json:"required_credit"`
	CurrentBalance     decimal.Decimal    `json:"current_balance"`
}

// Enroll enrolls a user into a course, consuming the required credit.
// It is idempotent: an existing non-cancelled enrollment is returned
// unchanged, without a second consumption.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*EnrollResult, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !c.EnrollmentOpen(time.Now()) {
		return nil, shared.NewDomainError("INVALID_STATE", "Course enrollment window is closed")
	}

	existing, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if existing != nil && existing.Status != course.EnrollmentCancelled {
		return &EnrollResult{Enrollment: existing, AlreadyEnrolled: true}, nil
	}

	required := c.RequiredCredit()
	account, err := s.creditLedger.GetAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.Balance.LessThan(required) {
		return &EnrollResult{
			InsufficientCredit: true,
			RequiredCredit:     required,
			CurrentBalance:     account.Balance,
		}, nil
	}

	var enrolled *course.Enrollment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if required.IsPositive() {
			_, err := s.creditLedger.Consume(ctx, ledgerapp.ConsumeRequest{
				UserID:   userID,
				Amount:   required,
				CourseID: &courseID,
				Remark:   fmt.Sprintf("Enrollment in %s", c.Title),
			})
			if err != nil {
				return err
			}
		}
		enrolled, err = s.activate(ctx, existing, userID, courseID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, shared.NotifyEnrollSuccess, map[string]any{
		"course_id":    courseID.String(),
		"course_title": c.Title,
	})
	return &EnrollResult{Enrollment: enrolled, RequiredCredit: required}, nil
}

// activate creates a fresh enrollment or reactivates a cancelled row.
// Must run inside the caller's transaction.
func (s *Service) activate(ctx context.Context, existing *course.Enrollment, userID, courseID uuid.UUID, isGift bool) (*course.Enrollment, error) {
	if existing != nil {
		if err := existing.Reactivate(isGift); err != nil {
			return nil, err
		}
		if err := s.enrollments.SaveWithLock(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate enrollment: %w", err)
		}
		return existing, nil
	}
	e, err := course.NewEnrollment(userID, courseID, isGift)
	if err != nil {
		return nil, err
	}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	return e, nil
}

// CreateForUser enrolls a user without touching their balance. Used by
// corporate purchase and gift claims, where someone else already paid.
// Must run inside the caller's transaction; returns ErrConflict when a
// non-cancelled enrollment exists.
func (s *Service) CreateForUser(ctx context.Context, userID, courseID uuid.UUID, isGift bool) (*course.Enrollment, error) {
	existing, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if existing != nil && existing.Status != course.EnrollmentCancelled {
		return nil, shared.NewDomainError(shared.ErrConflict.Code, "User is already enrolled in this course")
	}
	return s.activate(ctx, existing, userID, courseID, isGift)
}

// ListByUser returns all of a user's enrollments
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*course.Enrollment, error) {
	return s.enrollments.ListByUser(ctx, userID)
}

// MarkRated flags the enrollment as rated by its owner
func (s *Service) MarkRated(ctx context.Context, userID, enrollmentID uuid.UUID) error {
	return s.setFlag(ctx, userID, enrollmentID, (*course.Enrollment).MarkRated)
}

// MarkPosterShown flags the completion poster as displayed
func (s *Service) MarkPosterShown(ctx context.Context, userID, enrollmentID uuid.UUID) error {
	return s.setFlag(ctx, userID, enrollmentID, (*course.Enrollment).MarkPosterShown)
}

func (s *Service) setFlag(ctx context.Context, userID, enrollmentID uuid.UUID, set func(*course.Enrollment)) error {
	e, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return fmt.Errorf("failed to load enrollment: %w", err)
	}
	if e.UserID != userID {
		return shared.ErrForbidden
	}
	set(e)
	if err := s.enrollments.SaveWithLock(ctx, e); err != nil {
		return fmt.Errorf("failed to save enrollment: %w", err)
	}
	return nil
}

// notify delivers a best-effort notification; failures are logged and
// never propagated.
func (s *Service) notify(ctx context.Context, userID uuid.UUID, kind shared.NotificationKind, payload map[string]any) {
	if err := s.notifier.Notify(ctx, userID, kind, payload); err != nil {
		s.logger.Warn("Notification delivery failed",
			zap.String("user_id", userID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

package refund

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerapp "github.com/coursehub/backend/internal/application/ledger"
	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/refund"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditLedger is the slice of the ledger the refund engine needs
type CreditLedger interface {
	Refund(ctx context.Context, req ledgerapp.RefundRequest) (*ledgerapp.MutationResult, error)
}

// Service owns the refund workflow: a student files a time-gated
// request, an admin reviews it, approval refunds the frozen amount and
// cancels the enrollment atomically.
type Service struct {
	requests     refund.Repository
	enrollments  course.EnrollmentRepository
	courses      course.Repository
	creditLedger CreditLedger
	tx           shared.TransactionManager
	notifier     shared.Notifier
	logger       *zap.Logger
}

// NewService creates a refund service
func NewService(
	requests refund.Repository,
	enrollments course.EnrollmentRepository,
	courses course.Repository,
	creditLedger CreditLedger,
	tx shared.TransactionManager,
	notifier shared.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		requests:     requests,
		enrollments:  enrollments,
		courses:      courses,
		creditLedger: creditLedger,
		tx:           tx,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateRefundRequest files a refund for one of the caller's
// enrollments. Gifted enrollments are not refundable, and the request
// must be filed at least 72 hours before the course starts. The amount
// to refund is frozen from the course's current price.
func (s *Service) CreateRefundRequest(ctx context.Context, userID, enrollmentID uuid.UUID) (*refund.Request, error) {
	e, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if e.UserID != userID {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "Enrollment belongs to another user")
	}
	if e.Status != course.EnrollmentEnrolled {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot refund enrollment in %s status", e.Status))
	}
	if e.IsGift {
		return nil, shared.NewDomainError("INVALID_STATE", "Gifted enrollments are not refundable")
	}

	c, err := s.courses.FindByID(ctx, e.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if time.Until(c.StartTime) < refund.MinLeadTime {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Refunds must be requested at least 3 days before the course starts")
	}

	if _, err := s.requests.FindPendingByEnrollment(ctx, enrollmentID); err == nil {
		return nil, shared.NewDomainError(shared.ErrConflict.Code, "A pending refund request already exists for this enrollment")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}

	request, err := refund.NewRequest(enrollmentID, userID, e.CourseID, c.RequiredCredit())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create refund request: %w", err)
	}
	return request, nil
}

// CancelRefundRequest withdraws the caller's own PENDING request
func (s *Service) CancelRefundRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to load refund request: %w", err)
	}
	if request.UserID != userID {
		return shared.NewDomainError(shared.ErrForbidden.Code, "Refund request belongs to another user")
	}
	if request.Status != refund.StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel refund request in %s status", request.Status))
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return fmt.Errorf("failed to delete refund request: %w", err)
	}
	return nil
}

// ReviewRefundRequest approves or rejects a pending request. Approval
// refunds the frozen amount to the student's personal balance and
// cancels the enrollment in one transaction. The student is notified of
// either decision.
func (s *Service) ReviewRefundRequest(ctx context.Context, reviewerID, requestID uuid.UUID, approve bool, reason string) (*refund.Request, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load refund request: %w", err)
	}

	if !approve {
		if err := request.Reject(reviewerID, reason); err != nil {
			return nil, err
		}
		if err := s.requests.Save(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to save refund request: %w", err)
		}
		s.notifyDecision(ctx, request, false, reason)
		return request, nil
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := request.Approve(reviewerID); err != nil {
			return err
		}
		if err := s.requests.Save(ctx, request); err != nil {
			return fmt.Errorf("failed to save refund request: %w", err)
		}

		e, err := s.enrollments.FindByID(ctx, request.EnrollmentID)
		if err != nil {
			return fmt.Errorf("failed to load enrollment: %w", err)
		}
		if err := e.Cancel(); err != nil {
			return err
		}
		if err := s.enrollments.SaveWithLock(ctx, e); err != nil {
			return fmt.Errorf("failed to cancel enrollment: %w", err)
		}

		if request.CreditAmount.IsPositive() {
			_, err = s.creditLedger.Refund(ctx, ledgerapp.RefundRequest{
				UserID:   request.UserID,
				Amount:   request.CreditAmount,
				CourseID: &request.CourseID,
				Remark:   "Enrollment refund",
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, request, true, reason)
	return request, nil
}

func (s *Service) notifyDecision(ctx context.Context, request *refund.Request, approved bool, reason string) {
	err := s.notifier.Notify(ctx, request.UserID, shared.NotifyRefundDecision, map[string]any{
		"request_id": request.ID.String(),
		"course_id":  request.CourseID.String(),
		"approved":   approved,
		"reason":     reason,
	})
	if err != nil {
		s.logger.Warn("Notification delivery failed",
			zap.String("user_id", request.UserID.String()),
			zap.String("kind", string(shared.NotifyRefundDecision)),
			zap.Error(err),
		)
	}
}

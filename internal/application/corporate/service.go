package corporate

import (
	"context"
	"fmt"
	"time"

	ledgerapp "github.com/coursehub/backend/internal/application/ledger"
	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/organization"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditLedger is the slice of the ledger corporate allocation needs
type CreditLedger interface {
	AllocateTransfer(ctx context.Context, req ledgerapp.TransferRequest) (*ledgerapp.TransferResult, error)
	Consume(ctx context.Context, req ledgerapp.ConsumeRequest) (*ledgerapp.MutationResult, error)
}

// EnrollmentCreator creates enrollments paid for by someone else
type EnrollmentCreator interface {
	CreateForUser(ctx context.Context, userID, courseID uuid.UUID, isGift bool) (*course.Enrollment, error)
}

// Service lets an organization admin move personal credit into an
// employee's locked balance, or buy a course for an employee outright.
type Service struct {
	orgs         organization.Repository
	courses      course.Repository
	creditLedger CreditLedger
	enrollments  EnrollmentCreator
	tx           shared.TransactionManager
	notifier     shared.Notifier
	logger       *zap.Logger
}

// NewService creates a corporate allocation service
func NewService(
	orgs organization.Repository,
	courses course.Repository,
	creditLedger CreditLedger,
	enrollments EnrollmentCreator,
	tx shared.TransactionManager,
	notifier shared.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		orgs:         orgs,
		courses:      courses,
		creditLedger: creditLedger,
		enrollments:  enrollments,
		tx:           tx,
		notifier:     notifier,
		logger:       logger,
	}
}

// AllocateCredit moves credit from the admin's personal balance into
// the employee's locked balance. The admin must be the registered
// admin of an organization the employee belongs to. Locked credit the
// admin holds themselves cannot be redistributed.
func (s *Service) AllocateCredit(ctx context.Context, adminID, employeeID uuid.UUID, amount decimal.Decimal) (*ledgerapp.TransferResult, error) {
	if err := s.requireMembership(ctx, adminID, employeeID); err != nil {
		return nil, err
	}
	result, err := s.creditLedger.AllocateTransfer(ctx, ledgerapp.TransferRequest{
		FromUserID: adminID,
		ToUserID:   employeeID,
		Amount:     amount,
		Remark:     "Corporate credit allocation",
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, employeeID, shared.NotifyCorporateAllocated, map[string]any{
		"amount":   amount.String(),
		"admin_id": adminID.String(),
	})
	return result, nil
}

// BatchAllocateCredit allocates the same amount to several employees.
// Each allocation commits on its own; failures are reported per item.
func (s *Service) BatchAllocateCredit(ctx context.Context, adminID uuid.UUID, employeeIDs []uuid.UUID, amount decimal.Decimal) *shared.BatchOutcome {
	outcome := &shared.BatchOutcome{}
	for _, employeeID := range employeeIDs {
		if _, err := s.AllocateCredit(ctx, adminID, employeeID, amount); err != nil {
			outcome.AddFailure(employeeID, err)
			continue
		}
		outcome.AddSuccess()
	}
	return outcome
}

// PurchaseCourse debits the admin's balance for the course cost and
// enrolls the employee directly, bypassing the employee's own balance.
func (s *Service) PurchaseCourse(ctx context.Context, adminID, employeeID, courseID uuid.UUID) (*course.Enrollment, error) {
	if err := s.requireMembership(ctx, adminID, employeeID); err != nil {
		return nil, err
	}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !c.EnrollmentOpen(time.Now()) {
		return nil, shared.NewDomainError("INVALID_STATE", "Course enrollment window is closed")
	}

	var enrolled *course.Enrollment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cost := c.RequiredCredit()
		if cost.IsPositive() {
			_, err := s.creditLedger.Consume(ctx, ledgerapp.ConsumeRequest{
				UserID:   adminID,
				Amount:   cost,
				CourseID: &courseID,
				Remark:   fmt.Sprintf("Corporate purchase of %s for employee", c.Title),
			})
			if err != nil {
				return err
			}
		}
		enrolled, err = s.enrollments.CreateForUser(ctx, employeeID, courseID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, employeeID, shared.NotifyEnrollSuccess, map[string]any{
		"course_id":    courseID.String(),
		"course_title": c.Title,
		"purchased_by": adminID.String(),
	})
	return enrolled, nil
}

// requireMembership verifies the admin administers an organization the
// employee belongs to.
func (s *Service) requireMembership(ctx context.Context, adminID, employeeID uuid.UUID) error {
	org, err := s.orgs.FindByAdminID(ctx, adminID)
	if err != nil {
		return shared.NewDomainError(shared.ErrForbidden.Code, "User is not an organization admin")
	}
	member, err := s.orgs.IsMember(ctx, org.ID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return shared.NewDomainError(shared.ErrForbidden.Code, "Employee does not belong to this organization")
	}
	return nil
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

package gift

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerapp "github.com/coursehub/backend/internal/application/ledger"
	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/gift"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditLedger is the slice of the ledger gifting needs. Gifts spend
// personal credit only; locked corporate credit is not giftable.
type CreditLedger interface {
	ConsumePersonal(ctx context.Context, req ledgerapp.ConsumePersonalRequest) (*ledgerapp.MutationResult, error)
}

// EnrollmentCreator creates enrollments paid for by someone else
type EnrollmentCreator interface {
	CreateForUser(ctx context.Context, userID, courseID uuid.UUID, isGift bool) (*course.Enrollment, error)
}

// Service escrows gifted course seats. The sender pays when the gift is
// created; the enrollment is created when the code is claimed.
type Service struct {
	gifts        gift.Repository
	courses      course.Repository
	creditLedger CreditLedger
	enrollments  EnrollmentCreator
	tx           shared.TransactionManager
	notifier     shared.Notifier
	logger       *zap.Logger
}

// NewService creates a gift service
func NewService(
	gifts gift.Repository,
	courses course.Repository,
	creditLedger CreditLedger,
	enrollments EnrollmentCreator,
	tx shared.TransactionManager,
	notifier shared.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		gifts:        gifts,
		courses:      courses,
		creditLedger: creditLedger,
		enrollments:  enrollments,
		tx:           tx,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateGiftCode buys a course seat as a claimable code. The sender's
// personal balance is debited immediately; the seat is held in escrow
// until someone claims the code.
func (s *Service) CreateGiftCode(ctx context.Context, senderID, courseID uuid.UUID) (*gift.CourseGift, error) {
	c, err := s.loadOpenCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	g, err := gift.NewCourseGift(courseID, senderID, c.RequiredCredit())
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if g.Credit.IsPositive() {
			_, err := s.creditLedger.ConsumePersonal(ctx, ledgerapp.ConsumePersonalRequest{
				UserID:   senderID,
				Amount:   g.Credit,
				CourseID: &courseID,
				Remark:   fmt.Sprintf("Gift purchase of %s", c.Title),
			})
			if err != nil {
				return err
			}
		}
		if err := s.gifts.Create(ctx, g); err != nil {
			return fmt.Errorf("failed to create gift: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ClaimByCode redeems a gift code. Codes are single-use; a second claim
// is a conflict, as is claiming a course the user is already enrolled
// in. The claimer's balance is never touched.
func (s *Service) ClaimByCode(ctx context.Context, recipientID uuid.UUID, code string) (*gift.CourseGift, error) {
	g, err := s.gifts.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Gift code does not exist")
		}
		return nil, fmt.Errorf("failed to load gift: %w", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := g.Accept(recipientID); err != nil {
			return err
		}
		if _, err := s.enrollments.CreateForUser(ctx, recipientID, g.CourseID, true); err != nil {
			return err
		}
		if err := s.gifts.Save(ctx, g); err != nil {
			return fmt.Errorf("failed to save gift: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, recipientID, shared.NotifyGiftReceived, map[string]any{
		"gift_id":   g.ID.String(),
		"course_id": g.CourseID.String(),
	})
	s.notify(ctx, g.SenderID, shared.NotifyGiftClaimed, map[string]any{
		"gift_id":      g.ID.String(),
		"course_id":    g.CourseID.String(),
		"recipient_id": recipientID.String(),
	})
	return g, nil
}

// DirectGift buys a course seat for a named recipient in one step. The
// sender pays from personal balance and the recipient is enrolled
// immediately, with no code round-trip.
func (s *Service) DirectGift(ctx context.Context, senderID, recipientID, courseID uuid.UUID) (*gift.CourseGift, error) {
	c, err := s.loadOpenCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	g, err := gift.NewDirectGift(courseID, senderID, recipientID, c.RequiredCredit())
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if g.Credit.IsPositive() {
			_, err := s.creditLedger.ConsumePersonal(ctx, ledgerapp.ConsumePersonalRequest{
				UserID:   senderID,
				Amount:   g.Credit,
				CourseID: &courseID,
				Remark:   fmt.Sprintf("Gift purchase of %s", c.Title),
			})
			if err != nil {
				return err
			}
		}
		if _, err := s.enrollments.CreateForUser(ctx, recipientID, courseID, true); err != nil {
			return err
		}
		if err := s.gifts.Create(ctx, g); err != nil {
			return fmt.Errorf("failed to create gift: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, recipientID, shared.NotifyGiftReceived, map[string]any{
		"gift_id":      g.ID.String(),
		"course_id":    courseID.String(),
		"course_title": c.Title,
		"sender_id":    senderID.String(),
	})
	return g, nil
}

func (s *Service) loadOpenCourse(ctx context.Context, courseID uuid.UUID) (*course.Course, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !c.EnrollmentOpen(time.Now()) {
		return nil, shared.NewDomainError("INVALID_STATE", "Course enrollment window is closed")
	}
	return c, nil
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

package gift

import (
	"context"
	"testing"
	"time"

	ledgerapp "github.com/coursehub/backend/internal/application/ledger"
	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/gift"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTx struct{}

func (stubTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	sent []shared.NotificationKind
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uuid.UUID, kind shared.NotificationKind, payload map[string]any) error {
	n.sent = append(n.sent, kind)
	return nil
}

type giftStore struct {
	gifts map[uuid.UUID]*gift.CourseGift
}

func newGiftStore() *giftStore {
	return &giftStore{gifts: make(map[uuid.UUID]*gift.CourseGift)}
}

func (s *giftStore) FindByID(ctx context.Context, id uuid.UUID) (*gift.CourseGift, error) {
	g, ok := s.gifts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return g, nil
}

func (s *giftStore) FindByCode(ctx context.Context, code string) (*gift.CourseGift, error) {
	for _, g := range s.gifts {
		if g.Code == code {
			return g, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *giftStore) Create(ctx context.Context, g *gift.CourseGift) error {
	s.gifts[g.ID] = g
	return nil
}

func (s *giftStore) Save(ctx context.Context, g *gift.CourseGift) error {
	s.gifts[g.ID] = g
	return nil
}

type courseStore struct {
	courses map[uuid.UUID]*course.Course
}

func (s *courseStore) FindByID(ctx context.Context, id uuid.UUID) (*course.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (s *courseStore) Save(ctx context.Context, c *course.Course) error {
	s.courses[c.ID] = c
	return nil
}

type fakeLedger struct {
	consumed []ledgerapp.ConsumePersonalRequest
	err      error
}

func (f *fakeLedger) ConsumePersonal(ctx context.Context, req ledgerapp.ConsumePersonalRequest) (*ledgerapp.MutationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.consumed = append(f.consumed, req)
	return &ledgerapp.MutationResult{UserID: req.UserID, Amount: req.Amount.Neg()}, nil
}

type fakeEnrollments struct {
	created  []uuid.UUID
	enrolled map[uuid.UUID]bool // users with an existing enrollment
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{enrolled: make(map[uuid.UUID]bool)}
}

func (f *fakeEnrollments) CreateForUser(ctx context.Context, userID, courseID uuid.UUID, isGift bool) (*course.Enrollment, error) {
	if f.enrolled[userID] {
		return nil, shared.NewDomainError(shared.ErrConflict.Code, "User is already enrolled in this course")
	}
	e, err := course.NewEnrollment(userID, courseID, isGift)
	if err != nil {
		return nil, err
	}
	f.created = append(f.created, userID)
	f.enrolled[userID] = true
	return e, nil
}

type fixture struct {
	svc          *Service
	gifts        *giftStore
	courses      *courseStore
	creditLedger *fakeLedger
	enrollments  *fakeEnrollments
	notifier     *recordingNotifier
	course       *course.Course
}

func newFixture(t *testing.T, credit int64) *fixture {
	t.Helper()
	c, err := course.NewCourse("Machine Learning", uuid.New(), course.CreditTypeNormal,
		decimal.NewFromInt(credit), time.Now().Add(7*24*time.Hour))
	require.NoError(t, err)

	gifts := newGiftStore()
	courses := &courseStore{courses: map[uuid.UUID]*course.Course{c.ID: c}}
	creditLedger := &fakeLedger{}
	enrollments := newFakeEnrollments()
	notifier := &recordingNotifier{}
	svc := NewService(gifts, courses, creditLedger, enrollments, stubTx{}, notifier, zap.NewNop())
	return &fixture{
		svc:          svc,
		gifts:        gifts,
		courses:      courses,
		creditLedger: creditLedger,
		enrollments:  enrollments,
		notifier:     notifier,
		course:       c,
	}
}

func TestService_CreateGiftCode(t *testing.T) {
	ctx := context.Background()

	t.Run("debits the sender immediately", func(t *testing.T) {
		f := newFixture(t, 15)
		senderID := uuid.New()

		g, err := f.svc.CreateGiftCode(ctx, senderID, f.course.ID)
		require.NoError(t, err)
		assert.Equal(t, gift.StatusPending, g.Status)
		assert.NotEmpty(t, g.Code)
		assert.True(t, g.Credit.Equal(decimal.NewFromInt(15)))

		require.Len(t, f.creditLedger.consumed, 1)
		assert.Equal(t, senderID, f.creditLedger.consumed[0].UserID)
		// no enrollment until the code is claimed
		assert.Empty(t, f.enrollments.created)
	})

	t.Run("free course debits nothing", func(t *testing.T) {
		f := newFixture(t, 0)

		_, err := f.svc.CreateGiftCode(ctx, uuid.New(), f.course.ID)
		require.NoError(t, err)
		assert.Empty(t, f.creditLedger.consumed)
	})

	t.Run("insufficient personal balance fails the purchase", func(t *testing.T) {
		f := newFixture(t, 15)
		f.creditLedger.err = shared.ErrInsufficientBalance

		_, err := f.svc.CreateGiftCode(ctx, uuid.New(), f.course.ID)
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	})

	t.Run("requires an open enrollment window", func(t *testing.T) {
		f := newFixture(t, 15)
		past := time.Now().Add(-time.Hour)
		f.course.EnrollEnd = &past

		_, err := f.svc.CreateGiftCode(ctx, uuid.New(), f.course.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestService_ClaimByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("claims once and enrolls the recipient", func(t *testing.T) {
		f := newFixture(t, 15)
		senderID := uuid.New()
		g, err := f.svc.CreateGiftCode(ctx, senderID, f.course.ID)
		require.NoError(t, err)

		recipientID := uuid.New()
		claimed, err := f.svc.ClaimByCode(ctx, recipientID, g.Code)
		require.NoError(t, err)
		assert.Equal(t, gift.StatusAccepted, claimed.Status)
		require.NotNil(t, claimed.RecipientID)
		assert.Equal(t, recipientID, *claimed.RecipientID)
		assert.Equal(t, []uuid.UUID{recipientID}, f.enrollments.created)

		// recipient and sender are both told
		assert.Equal(t, []shared.NotificationKind{shared.NotifyGiftReceived, shared.NotifyGiftClaimed}, f.notifier.sent)
	})

	t.Run("codes are single-use", func(t *testing.T) {
		f := newFixture(t, 15)
		g, err := f.svc.CreateGiftCode(ctx, uuid.New(), f.course.ID)
		require.NoError(t, err)

		_, err = f.svc.ClaimByCode(ctx, uuid.New(), g.Code)
		require.NoError(t, err)

		_, err = f.svc.ClaimByCode(ctx, uuid.New(), g.Code)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		f := newFixture(t, 15)

		_, err := f.svc.ClaimByCode(ctx, uuid.New(), "nosuchcode")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("already enrolled recipient cannot claim", func(t *testing.T) {
		f := newFixture(t, 15)
		g, err := f.svc.CreateGiftCode(ctx, uuid.New(), f.course.ID)
		require.NoError(t, err)

		recipientID := uuid.New()
		f.enrollments.enrolled[recipientID] = true

		_, err = f.svc.ClaimByCode(ctx, recipientID, g.Code)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

func TestService_DirectGift(t *testing.T) {
	ctx := context.Background()

	t.Run("pays and enrolls in one step", func(t *testing.T) {
		f := newFixture(t, 15)
		senderID, recipientID := uuid.New(), uuid.New()

		g, err := f.svc.DirectGift(ctx, senderID, recipientID, f.course.ID)
		require.NoError(t, err)
		assert.Equal(t, gift.StatusAccepted, g.Status)
		require.Len(t, f.creditLedger.consumed, 1)
		assert.Equal(t, senderID, f.creditLedger.consumed[0].UserID)
		assert.Equal(t, []uuid.UUID{recipientID}, f.enrollments.created)
		assert.Equal(t, []shared.NotificationKind{shared.NotifyGiftReceived}, f.notifier.sent)
	})

	t.Run("conflicts when the recipient is already enrolled", func(t *testing.T) {
		f := newFixture(t, 15)
		recipientID := uuid.New()
		f.enrollments.enrolled[recipientID] = true

		_, err := f.svc.DirectGift(ctx, uuid.New(), recipientID, f.course.ID)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

package refund

import (
	"context"
	"testing"
	"time"

	ledgerapp "github.com/coursehub/backend/internal/application/ledger"
	"github.com/coursehub/backend/internal/domain/course"
	"github.com/coursehub/backend/internal/domain/refund"
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

type requestStore struct {
	requests map[uuid.UUID]*refund.Request
}

func newRequestStore() *requestStore {
	return &requestStore{requests: make(map[uuid.UUID]*refund.Request)}
}

func (s *requestStore) FindByID(ctx context.Context, id uuid.UUID) (*refund.Request, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (s *requestStore) FindPendingByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*refund.Request, error) {
	for _, r := range s.requests {
		if r.EnrollmentID == enrollmentID && r.Status == refund.StatusPending {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *requestStore) Create(ctx context.Context, r *refund.Request) error {
	s.requests[r.ID] = r
	return nil
}

func (s *requestStore) Save(ctx context.Context, r *refund.Request) error {
	s.requests[r.ID] = r
	return nil
}

func (s *requestStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.requests[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.requests, id)
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

type enrollmentStore struct {
	enrollments map[uuid.UUID]*course.Enrollment
}

func newEnrollmentStore() *enrollmentStore {
	return &enrollmentStore{enrollments: make(map[uuid.UUID]*course.Enrollment)}
}

func (s *enrollmentStore) FindByID(ctx context.Context, id uuid.UUID) (*course.Enrollment, error) {
	e, ok := s.enrollments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (s *enrollmentStore) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*course.Enrollment, error) {
	for _, e := range s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *enrollmentStore) FindActiveByCourse(ctx context.Context, courseID uuid.UUID) ([]*course.Enrollment, error) {
	var out []*course.Enrollment
	for _, e := range s.enrollments {
		if e.CourseID == courseID && e.Active() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *enrollmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*course.Enrollment, error) {
	var out []*course.Enrollment
	for _, e := range s.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *enrollmentStore) CountActiveByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	active, _ := s.FindActiveByCourse(ctx, courseID)
	return int64(len(active)), nil
}

func (s *enrollmentStore) Create(ctx context.Context, e *course.Enrollment) error {
	s.enrollments[e.ID] = e
	return nil
}

func (s *enrollmentStore) SaveWithLock(ctx context.Context, e *course.Enrollment) error {
	s.enrollments[e.ID] = e
	return nil
}

type fakeLedger struct {
	refunds []ledgerapp.RefundRequest
}

func (f *fakeLedger) Refund(ctx context.Context, req ledgerapp.RefundRequest) (*ledgerapp.MutationResult, error) {
	f.refunds = append(f.refunds, req)
	return &ledgerapp.MutationResult{UserID: req.UserID, Amount: req.Amount}, nil
}

type fixture struct {
	svc          *Service
	requests     *requestStore
	courses      *courseStore
	enrollments  *enrollmentStore
	creditLedger *fakeLedger
	notifier     *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	requests := newRequestStore()
	courses := &courseStore{courses: make(map[uuid.UUID]*course.Course)}
	enrollments := newEnrollmentStore()
	creditLedger := &fakeLedger{}
	notifier := &recordingNotifier{}
	svc := NewService(requests, enrollments, courses, creditLedger, stubTx{}, notifier, zap.NewNop())
	return &fixture{svc: svc, requests: requests, courses: courses, enrollments: enrollments, creditLedger: creditLedger, notifier: notifier}
}

// seed creates a course starting at the given offset and an active
// enrollment against it.
func (f *fixture) seed(t *testing.T, startsIn time.Duration, credit int64, isGift bool) *course.Enrollment {
	t.Helper()
	c, err := course.NewCourse("Databases", uuid.New(), course.CreditTypeNormal,
		decimal.NewFromInt(credit), time.Now().Add(startsIn))
	require.NoError(t, err)
	f.courses.courses[c.ID] = c

	e, err := course.NewEnrollment(uuid.New(), c.ID, isGift)
	require.NoError(t, err)
	require.NoError(t, f.enrollments.Create(context.Background(), e))
	return e
}

func TestService_CreateRefundRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("freezes the current course price", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, false)

		request, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		require.NoError(t, err)
		assert.Equal(t, refund.StatusPending, request.Status)
		assert.True(t, request.CreditAmount.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, e.CourseID, request.CourseID)
	})

	t.Run("rejects inside the lead time window", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 71*time.Hour, 25, false)

		_, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("gifted enrollments are not refundable", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, true)

		_, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("only the owner can file", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, false)

		_, err := f.svc.CreateRefundRequest(ctx, uuid.New(), e.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("one pending request per enrollment", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, false)

		_, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		require.NoError(t, err)

		_, err = f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("rejects non-enrolled states", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, false)
		require.NoError(t, e.Complete())

		_, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestService_CancelRefundRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.seed(t, 96*time.Hour, 25, false)
	request, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
	require.NoError(t, err)

	err = f.svc.CancelRefundRequest(ctx, uuid.New(), request.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, f.svc.CancelRefundRequest(ctx, e.UserID, request.ID))
	_, err = f.requests.FindByID(ctx, request.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ReviewRefundRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("approval refunds and cancels atomically", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, false)
		request, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		require.NoError(t, err)

		reviewed, err := f.svc.ReviewRefundRequest(ctx, uuid.New(), request.ID, true, "")
		require.NoError(t, err)
		assert.Equal(t, refund.StatusApproved, reviewed.Status)
		assert.Equal(t, course.EnrollmentCancelled, e.Status)

		require.Len(t, f.creditLedger.refunds, 1)
		assert.Equal(t, e.UserID, f.creditLedger.refunds[0].UserID)
		assert.True(t, f.creditLedger.refunds[0].Amount.Equal(decimal.NewFromInt(25)))

		assert.Equal(t, []shared.NotificationKind{shared.NotifyRefundDecision}, f.notifier.sent)
	})

	t.Run("zero amount skips the ledger", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 0, false)
		request, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		require.NoError(t, err)

		_, err = f.svc.ReviewRefundRequest(ctx, uuid.New(), request.ID, true, "")
		require.NoError(t, err)
		assert.Empty(t, f.creditLedger.refunds)
		assert.Equal(t, course.EnrollmentCancelled, e.Status)
	})

	t.Run("rejection keeps the enrollment", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, false)
		request, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		require.NoError(t, err)

		reviewed, err := f.svc.ReviewRefundRequest(ctx, uuid.New(), request.ID, false, "course about to start")
		require.NoError(t, err)
		assert.Equal(t, refund.StatusRejected, reviewed.Status)
		assert.True(t, e.Active())
		assert.Empty(t, f.creditLedger.refunds)
		assert.Equal(t, []shared.NotificationKind{shared.NotifyRefundDecision}, f.notifier.sent)
	})

	t.Run("a decided request cannot be reviewed again", func(t *testing.T) {
		f := newFixture(t)
		e := f.seed(t, 96*time.Hour, 25, false)
		request, err := f.svc.CreateRefundRequest(ctx, e.UserID, e.ID)
		require.NoError(t, err)

		_, err = f.svc.ReviewRefundRequest(ctx, uuid.New(), request.ID, false, "no")
		require.NoError(t, err)

		_, err = f.svc.ReviewRefundRequest(ctx, uuid.New(), request.ID, true, "")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

package ledger

import (
	"context"
	"testing"

	"github.com/coursehub/backend/internal/domain/ledger"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTx struct{}

func (stubTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type accountStore struct {
	accounts map[uuid.UUID]*ledger.CreditAccount
}

func newAccountStore() *accountStore {
	return &accountStore{accounts: make(map[uuid.UUID]*ledger.CreditAccount)}
}

func (s *accountStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*ledger.CreditAccount, error) {
	account, ok := s.accounts[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

func (s *accountStore) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*ledger.CreditAccount, error) {
	return s.FindByUserID(ctx, userID)
}

func (s *accountStore) Create(ctx context.Context, account *ledger.CreditAccount) error {
	if _, ok := s.accounts[account.UserID]; ok {
		return shared.ErrConflict
	}
	s.accounts[account.UserID] = account
	return nil
}

func (s *accountStore) Save(ctx context.Context, account *ledger.CreditAccount) error {
	s.accounts[account.UserID] = account
	return nil
}

type recordStore struct {
	records []*ledger.CreditRecord
}

func (s *recordStore) Create(ctx context.Context, record *ledger.CreditRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *recordStore) ListByUser(ctx context.Context, userID uuid.UUID, filter ledger.RecordFilter) ([]*ledger.CreditRecord, int64, error) {
	var out []*ledger.CreditRecord
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func newTestService(t *testing.T) (*Service, *accountStore, *recordStore) {
	t.Helper()
	accounts := newAccountStore()
	records := &recordStore{}
	return NewService(accounts, records, stubTx{}), accounts, records
}

func seedAccount(t *testing.T, svc *Service, userID uuid.UUID, personal, locked int64) {
	t.Helper()
	ctx := context.Background()
	if personal > 0 {
		_, err := svc.Add(ctx, AddRequest{UserID: userID, Amount: decimal.NewFromInt(personal), Type: ledger.RecordAdminAdd})
		require.NoError(t, err)
	}
	if locked > 0 {
		_, err := svc.Add(ctx, AddRequest{UserID: userID, Amount: decimal.NewFromInt(locked), Type: ledger.RecordAdminAdd, Locked: true})
		require.NoError(t, err)
	}
}

func TestService_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("writes one consume record with corporate source", func(t *testing.T) {
		svc, _, records := newTestService(t)
		userID := uuid.New()
		seedAccount(t, svc, userID, 50, 30)
		courseID := uuid.New()

		result, err := svc.Consume(ctx, ConsumeRequest{
			UserID:   userID,
			Amount:   decimal.NewFromInt(40),
			CourseID: &courseID,
			Remark:   "Enrollment",
		})
		require.NoError(t, err)
		assert.Equal(t, ledger.SourceCorporate, result.Source)
		assert.True(t, result.Balance.Equal(decimal.NewFromInt(40)))
		assert.True(t, result.LockedBalance.IsZero())

		last := records.records[len(records.records)-1]
		assert.Equal(t, ledger.RecordConsume, last.Type)
		assert.True(t, last.Amount.Equal(decimal.NewFromInt(-40)))
		assert.True(t, last.BalanceAfter.Equal(decimal.NewFromInt(40)))
		require.NotNil(t, last.CourseID)
		assert.Equal(t, courseID, *last.CourseID)
	})

	t.Run("insufficient balance writes nothing", func(t *testing.T) {
		svc, _, records := newTestService(t)
		userID := uuid.New()
		seedAccount(t, svc, userID, 10, 0)
		before := len(records.records)

		_, err := svc.Consume(ctx, ConsumeRequest{UserID: userID, Amount: decimal.NewFromInt(11)})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		assert.Len(t, records.records, before)
	})
}

func TestService_ConsumePersonal(t *testing.T) {
	ctx := context.Background()
	svc, accounts, _ := newTestService(t)
	userID := uuid.New()
	seedAccount(t, svc, userID, 20, 100)

	t.Run("ignores locked balance", func(t *testing.T) {
		_, err := svc.ConsumePersonal(ctx, ConsumePersonalRequest{UserID: userID, Amount: decimal.NewFromInt(30)})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

		result, err := svc.ConsumePersonal(ctx, ConsumePersonalRequest{UserID: userID, Amount: decimal.NewFromInt(20)})
		require.NoError(t, err)
		assert.Equal(t, ledger.SourcePersonal, result.Source)
		assert.True(t, accounts.accounts[userID].LockedBalance.Equal(decimal.NewFromInt(100)))
	})
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-addition record types", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Add(ctx, AddRequest{UserID: uuid.New(), Amount: decimal.NewFromInt(10), Type: ledger.RecordConsume})
		assert.Error(t, err)
	})

	t.Run("provisions account on first credit", func(t *testing.T) {
		svc, accounts, _ := newTestService(t)
		userID := uuid.New()

		result, err := svc.Add(ctx, AddRequest{UserID: userID, Amount: decimal.NewFromInt(10), Type: ledger.RecordEarn})
		require.NoError(t, err)
		assert.True(t, result.Balance.Equal(decimal.NewFromInt(10)))
		assert.Contains(t, accounts.accounts, userID)
	})

	t.Run("locked credit reports corporate source", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		result, err := svc.Add(ctx, AddRequest{UserID: uuid.New(), Amount: decimal.NewFromInt(10), Type: ledger.RecordAdminAdd, Locked: true})
		require.NoError(t, err)
		assert.Equal(t, ledger.SourceCorporate, result.Source)
		assert.True(t, result.LockedBalance.Equal(decimal.NewFromInt(10)))
	})
}

func TestService_Refund(t *testing.T) {
	ctx := context.Background()
	svc, _, records := newTestService(t)
	userID := uuid.New()
	seedAccount(t, svc, userID, 0, 40)
	_, err := svc.Consume(ctx, ConsumeRequest{UserID: userID, Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)

	result, err := svc.Refund(ctx, RefundRequest{UserID: userID, Amount: decimal.NewFromInt(40), Remark: "Enrollment refund"})
	require.NoError(t, err)

	// refunded credit is personal even though the consumption was corporate
	assert.True(t, result.PersonalBalance.Equal(decimal.NewFromInt(40)))
	assert.True(t, result.LockedBalance.IsZero())

	last := records.records[len(records.records)-1]
	assert.Equal(t, ledger.RecordRefund, last.Type)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(40)))
}

func TestService_Deduct(t *testing.T) {
	ctx := context.Background()
	svc, _, records := newTestService(t)
	userID := uuid.New()
	seedAccount(t, svc, userID, 30, 20)

	result, err := svc.Deduct(ctx, DeductRequest{UserID: userID, Amount: decimal.NewFromInt(40), Remark: "policy violation"})
	require.NoError(t, err)
	assert.True(t, result.PersonalBalance.IsZero())
	assert.True(t, result.LockedBalance.Equal(decimal.NewFromInt(10)))

	last := records.records[len(records.records)-1]
	assert.Equal(t, ledger.RecordAdminDeduct, last.Type)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(-40)))
}

func TestService_AllocateTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves personal credit into locked balance", func(t *testing.T) {
		svc, accounts, records := newTestService(t)
		adminID, employeeID := uuid.New(), uuid.New()
		seedAccount(t, svc, adminID, 100, 0)

		result, err := svc.AllocateTransfer(ctx, TransferRequest{
			FromUserID: adminID,
			ToUserID:   employeeID,
			Amount:     decimal.NewFromInt(60),
		})
		require.NoError(t, err)

		assert.True(t, accounts.accounts[adminID].PersonalBalance.Equal(decimal.NewFromInt(40)))
		assert.True(t, accounts.accounts[employeeID].LockedBalance.Equal(decimal.NewFromInt(60)))
		assert.True(t, accounts.accounts[employeeID].PersonalBalance.IsZero())

		assert.Equal(t, ledger.SourcePersonal, result.Debit.Source)
		assert.Equal(t, ledger.SourceCorporate, result.Credit.Source)

		// one linked record per side
		debit := records.records[len(records.records)-2]
		credit := records.records[len(records.records)-1]
		assert.Equal(t, ledger.RecordCorporateAllocate, debit.Type)
		assert.Equal(t, ledger.RecordCorporateAllocate, credit.Type)
		require.NotNil(t, debit.ToUserID)
		assert.Equal(t, employeeID, *debit.ToUserID)
		require.NotNil(t, credit.FromUserID)
		assert.Equal(t, adminID, *credit.FromUserID)
	})

	t.Run("locked credit cannot be redistributed", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		adminID := uuid.New()
		seedAccount(t, svc, adminID, 10, 100)

		_, err := svc.AllocateTransfer(ctx, TransferRequest{
			FromUserID: adminID,
			ToUserID:   uuid.New(),
			Amount:     decimal.NewFromInt(50),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	})

	t.Run("rejects self transfer", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		userID := uuid.New()

		_, err := svc.AllocateTransfer(ctx, TransferRequest{
			FromUserID: userID,
			ToUserID:   userID,
			Amount:     decimal.NewFromInt(10),
		})
		assert.Error(t, err)
	})
}

func TestService_GetAccount(t *testing.T) {
	ctx := context.Background()
	svc, accounts, _ := newTestService(t)
	userID := uuid.New()

	account, err := svc.GetAccount(ctx, userID)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
	assert.Contains(t, accounts.accounts, userID)

	again, err := svc.GetAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
}

package ledger

import (
	"testing"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(t *testing.T, personal, locked int64) *CreditAccount {
	t.Helper()
	account, err := NewCreditAccount(uuid.New())
	require.NoError(t, err)
	if personal > 0 {
		require.NoError(t, account.Credit(decimal.NewFromInt(personal), false))
	}
	if locked > 0 {
		require.NoError(t, account.Credit(decimal.NewFromInt(locked), true))
	}
	return account
}

func TestNewCreditAccount(t *testing.T) {
	t.Run("creates empty account", func(t *testing.T) {
		account, err := NewCreditAccount(uuid.New())
		require.NoError(t, err)
		assert.True(t, account.Balance.IsZero())
		assert.True(t, account.PersonalBalance.IsZero())
		assert.True(t, account.LockedBalance.IsZero())
	})

	t.Run("rejects nil user", func(t *testing.T) {
		_, err := NewCreditAccount(uuid.Nil)
		assert.Error(t, err)
	})
}

func TestCreditAccount_Consume(t *testing.T) {
	t.Run("spends locked credit first", func(t *testing.T) {
		account := newAccount(t, 50, 30)

		breakdown, err := account.Consume(decimal.NewFromInt(40))
		require.NoError(t, err)

		assert.True(t, breakdown.FromLocked.Equal(decimal.NewFromInt(30)))
		assert.True(t, breakdown.FromPersonal.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, SourceCorporate, breakdown.Source)
		assert.True(t, account.LockedBalance.IsZero())
		assert.True(t, account.PersonalBalance.Equal(decimal.NewFromInt(40)))
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(40)))
	})

	t.Run("source is corporate when any locked credit used", func(t *testing.T) {
		account := newAccount(t, 100, 1)

		breakdown, err := account.Consume(decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.Equal(t, SourceCorporate, breakdown.Source)
	})

	t.Run("source is personal when no locked credit", func(t *testing.T) {
		account := newAccount(t, 100, 0)

		breakdown, err := account.Consume(decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.Equal(t, SourcePersonal, breakdown.Source)
		assert.True(t, breakdown.FromLocked.IsZero())
	})

	t.Run("rejects insufficient balance", func(t *testing.T) {
		account := newAccount(t, 10, 10)

		_, err := account.Consume(decimal.NewFromInt(21))
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		// nothing debited on failure
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		account := newAccount(t, 10, 0)

		_, err := account.Consume(decimal.Zero)
		assert.Error(t, err)
		_, err = account.Consume(decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("tracks lifetime usage", func(t *testing.T) {
		account := newAccount(t, 50, 0)

		_, err := account.Consume(decimal.NewFromInt(20))
		require.NoError(t, err)
		assert.True(t, account.TotalUsed.Equal(decimal.NewFromInt(20)))
	})
}

func TestCreditAccount_ConsumePersonal(t *testing.T) {
	t.Run("never touches locked balance", func(t *testing.T) {
		account := newAccount(t, 30, 100)

		err := account.ConsumePersonal(decimal.NewFromInt(30))
		require.NoError(t, err)
		assert.True(t, account.PersonalBalance.IsZero())
		assert.True(t, account.LockedBalance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("fails when personal balance short even if total covers", func(t *testing.T) {
		account := newAccount(t, 10, 100)

		err := account.ConsumePersonal(decimal.NewFromInt(11))
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	})
}

func TestCreditAccount_Credit(t *testing.T) {
	t.Run("locked credit lands in locked balance", func(t *testing.T) {
		account := newAccount(t, 0, 0)

		require.NoError(t, account.Credit(decimal.NewFromInt(25), true))
		assert.True(t, account.LockedBalance.Equal(decimal.NewFromInt(25)))
		assert.True(t, account.PersonalBalance.IsZero())
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(25)))
		assert.True(t, account.TotalEarned.Equal(decimal.NewFromInt(25)))
	})

	t.Run("unlocked credit lands in personal balance", func(t *testing.T) {
		account := newAccount(t, 0, 0)

		require.NoError(t, account.Credit(decimal.NewFromInt(25), false))
		assert.True(t, account.PersonalBalance.Equal(decimal.NewFromInt(25)))
		assert.True(t, account.LockedBalance.IsZero())
	})
}

func TestCreditAccount_Refund(t *testing.T) {
	t.Run("refund lands in personal balance regardless of provenance", func(t *testing.T) {
		account := newAccount(t, 0, 40)
		_, err := account.Consume(decimal.NewFromInt(40))
		require.NoError(t, err)

		require.NoError(t, account.Refund(decimal.NewFromInt(40)))
		assert.True(t, account.PersonalBalance.Equal(decimal.NewFromInt(40)))
		assert.True(t, account.LockedBalance.IsZero())
	})

	t.Run("lifetime usage never drops below zero", func(t *testing.T) {
		account := newAccount(t, 10, 0)

		require.NoError(t, account.Refund(decimal.NewFromInt(100)))
		assert.True(t, account.TotalUsed.IsZero())
	})
}

func TestCreditAccount_Deduct(t *testing.T) {
	t.Run("debits personal balance first", func(t *testing.T) {
		account := newAccount(t, 30, 50)

		require.NoError(t, account.Deduct(decimal.NewFromInt(40)))
		assert.True(t, account.PersonalBalance.IsZero())
		assert.True(t, account.LockedBalance.Equal(decimal.NewFromInt(40)))
	})

	t.Run("rejects insufficient balance", func(t *testing.T) {
		account := newAccount(t, 5, 5)

		err := account.Deduct(decimal.NewFromInt(11))
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	})
}

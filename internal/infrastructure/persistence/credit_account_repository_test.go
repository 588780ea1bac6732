package persistence

import (
	"context"
	"testing"

	"github.com/coursehub/backend/internal/domain/ledger"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCreditAccountRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t, &models.CreditAccountModel{})
	repo := NewGormCreditAccountRepository(db)
	ctx := context.Background()

	t.Run("round-trips balances", func(t *testing.T) {
		userID := uuid.New()
		account, err := ledger.NewCreditAccount(userID)
		require.NoError(t, err)
		require.NoError(t, account.Credit(decimal.NewFromInt(100), false))
		require.NoError(t, account.Credit(decimal.NewFromInt(40), true))

		require.NoError(t, repo.Create(ctx, account))

		found, err := repo.FindByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)
		assert.True(t, found.PersonalBalance.Equal(decimal.NewFromInt(100)))
		assert.True(t, found.LockedBalance.Equal(decimal.NewFromInt(40)))
		assert.True(t, found.Balance.Equal(decimal.NewFromInt(140)))
		assert.True(t, found.TotalEarned.Equal(decimal.NewFromInt(140)))
	})

	t.Run("one account per user", func(t *testing.T) {
		userID := uuid.New()
		first, err := ledger.NewCreditAccount(userID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		second, err := ledger.NewCreditAccount(userID)
		require.NoError(t, err)
		err = repo.Create(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := repo.FindByUserID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCreditAccountRepository_Save(t *testing.T) {
	db := setupTestDB(t, &models.CreditAccountModel{})
	repo := NewGormCreditAccountRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	account, err := ledger.NewCreditAccount(userID)
	require.NoError(t, err)
	require.NoError(t, account.Credit(decimal.NewFromInt(50), false))
	require.NoError(t, repo.Create(ctx, account))

	_, err = account.Consume(decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, account))

	found, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, found.Balance.IsZero())
	assert.True(t, found.TotalUsed.Equal(decimal.NewFromInt(50)))
}

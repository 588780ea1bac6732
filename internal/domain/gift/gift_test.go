package gift

import (
	"testing"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCourseGift(t *testing.T) {
	t.Run("creates pending gift with code", func(t *testing.T) {
		g, err := NewCourseGift(uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Equal(t, StatusPending, g.Status)
		assert.NotEmpty(t, g.Code)
		assert.Nil(t, g.RecipientID)
	})

	t.Run("codes are unique", func(t *testing.T) {
		a, err := NewCourseGift(uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		b, err := NewCourseGift(uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.NotEqual(t, a.Code, b.Code)
	})

	t.Run("rejects negative credit", func(t *testing.T) {
		_, err := NewCourseGift(uuid.New(), uuid.New(), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestCourseGift_Accept(t *testing.T) {
	t.Run("binds recipient", func(t *testing.T) {
		g, err := NewCourseGift(uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)

		recipientID := uuid.New()
		require.NoError(t, g.Accept(recipientID))
		assert.Equal(t, StatusAccepted, g.Status)
		require.NotNil(t, g.RecipientID)
		assert.Equal(t, recipientID, *g.RecipientID)
		assert.NotNil(t, g.AcceptedAt)
	})

	t.Run("codes are single-use", func(t *testing.T) {
		g, err := NewCourseGift(uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		require.NoError(t, g.Accept(uuid.New()))

		err = g.Accept(uuid.New())
		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

func TestNewDirectGift(t *testing.T) {
	t.Run("skips the pending state", func(t *testing.T) {
		recipientID := uuid.New()
		g, err := NewDirectGift(uuid.New(), uuid.New(), recipientID, decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, g.Status)
		require.NotNil(t, g.RecipientID)
		assert.Equal(t, recipientID, *g.RecipientID)
	})

	t.Run("requires recipient", func(t *testing.T) {
		_, err := NewDirectGift(uuid.New(), uuid.New(), uuid.Nil, decimal.NewFromInt(10))
		assert.Error(t, err)
	})
}

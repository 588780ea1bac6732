package course

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCourse(t *testing.T) {
	t.Run("creates active course", func(t *testing.T) {
		c, err := NewCourse("Go Fundamentals", uuid.New(), CreditTypeNormal, decimal.NewFromInt(10), time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, StatusActive, c.Status)
	})

	t.Run("defaults credit type to normal", func(t *testing.T) {
		c, err := NewCourse("Go Fundamentals", uuid.New(), "", decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)
		assert.Equal(t, CreditTypeNormal, c.CreditType)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewCourse("", uuid.New(), CreditTypeNormal, decimal.NewFromInt(10), time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects negative credit", func(t *testing.T) {
		_, err := NewCourse("Go Fundamentals", uuid.New(), CreditTypeNormal, decimal.NewFromInt(-1), time.Now())
		assert.Error(t, err)
	})
}

func TestCourse_RequiredCredit(t *testing.T) {
	t.Run("master course uses master price when set", func(t *testing.T) {
		c, err := NewCourse("Masterclass", uuid.New(), CreditTypeMaster, decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)
		c.MasterCredit = decimal.NewFromInt(30)

		assert.True(t, c.RequiredCredit().Equal(decimal.NewFromInt(30)))
	})

	t.Run("master course without master price falls back to credit", func(t *testing.T) {
		c, err := NewCourse("Masterclass", uuid.New(), CreditTypeMaster, decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)

		assert.True(t, c.RequiredCredit().Equal(decimal.NewFromInt(10)))
	})

	t.Run("normal course ignores master price", func(t *testing.T) {
		c, err := NewCourse("Basics", uuid.New(), CreditTypeNormal, decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)
		c.MasterCredit = decimal.NewFromInt(30)

		assert.True(t, c.RequiredCredit().Equal(decimal.NewFromInt(10)))
	})
}

func TestCourse_EnrollmentOpen(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	newTestCourse := func(t *testing.T) *Course {
		t.Helper()
		c, err := NewCourse("Window", uuid.New(), CreditTypeNormal, decimal.NewFromInt(5), future)
		require.NoError(t, err)
		return c
	}

	t.Run("open with no window bounds", func(t *testing.T) {
		c := newTestCourse(t)
		assert.True(t, c.EnrollmentOpen(now))
	})

	t.Run("closed before window opens", func(t *testing.T) {
		c := newTestCourse(t)
		c.EnrollStart = &future
		assert.False(t, c.EnrollmentOpen(now))
	})

	t.Run("closed after window ends", func(t *testing.T) {
		c := newTestCourse(t)
		c.EnrollEnd = &past
		assert.False(t, c.EnrollmentOpen(now))
	})

	t.Run("open inside window", func(t *testing.T) {
		c := newTestCourse(t)
		c.EnrollStart = &past
		c.EnrollEnd = &future
		assert.True(t, c.EnrollmentOpen(now))
	})

	t.Run("closed once archived", func(t *testing.T) {
		c := newTestCourse(t)
		require.NoError(t, c.Archive())
		assert.False(t, c.EnrollmentOpen(now))
	})
}

func TestCourse_Archive(t *testing.T) {
	c, err := NewCourse("Done", uuid.New(), CreditTypeNormal, decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)

	require.NoError(t, c.Archive())
	assert.True(t, c.IsArchived())

	err = c.Archive()
	assert.Error(t, err)
}

func TestCourse_IsTaughtBy(t *testing.T) {
	teacherID := uuid.New()
	c, err := NewCourse("Ownership", teacherID, CreditTypeNormal, decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)

	assert.True(t, c.IsTaughtBy(teacherID))
	assert.False(t, c.IsTaughtBy(uuid.New()))
}

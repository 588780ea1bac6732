package persistence

import (
	"context"
	"errors"

	"github.com/coursehub/backend/internal/domain/ledger"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCreditAccountRepository implements ledger.AccountRepository using GORM
type GormCreditAccountRepository struct {
	db *gorm.DB
}

// NewGormCreditAccountRepository creates a new GormCreditAccountRepository
func NewGormCreditAccountRepository(db *gorm.DB) *GormCreditAccountRepository {
	return &GormCreditAccountRepository{db: db}
}

// FindByUserID finds the credit account for a user
func (r *GormCreditAccountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*ledger.CreditAccount, error) {
	var model models.CreditAccountModel
	if err := session(ctx, r.db).WithContext(ctx).
		First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUserIDForUpdate loads the account under a row lock. Concurrent
// mutations of the same account serialize on this lock; the caller must
// hold an open transaction.
func (r *GormCreditAccountRepository) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*ledger.CreditAccount, error) {
	var model models.CreditAccountModel
	if err := session(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new credit account
func (r *GormCreditAccountRepository) Create(ctx context.Context, account *ledger.CreditAccount) error {
	model := models.CreditAccountModelFromDomain(account)
	if err := session(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Save updates an existing credit account
func (r *GormCreditAccountRepository) Save(ctx context.Context, account *ledger.CreditAccount) error {
	model := models.CreditAccountModelFromDomain(account)
	return session(ctx, r.db).WithContext(ctx).Save(model).Error
}

var _ ledger.AccountRepository = (*GormCreditAccountRepository)(nil)

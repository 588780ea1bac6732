package ledger

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository persists credit accounts
type AccountRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*CreditAccount, error)
	// FindByUserIDForUpdate loads the account with a row lock. Must be
	// called inside a transaction; concurrent callers for the same user
	// serialize on the account row.
	FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*CreditAccount, error)
	Create(ctx context.Context, account *CreditAccount) error
	Save(ctx context.Context, account *CreditAccount) error
}

// RecordFilter narrows credit record listings
type RecordFilter struct {
	Type     *RecordType
	Source   *RecordSource
	CourseID *uuid.UUID
	Page     int
	PageSize int
}

// RecordRepository persists the append-only credit log
type RecordRepository interface {
	Create(ctx context.Context, record *CreditRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]*CreditRecord, int64, error)
}

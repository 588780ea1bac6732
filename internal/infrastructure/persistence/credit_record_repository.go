package persistence

import (
	"context"

	"github.com/coursehub/backend/internal/domain/ledger"
	"github.com/coursehub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditRecordRepository implements ledger.RecordRepository using GORM.
// Records are append-only: there is no update or delete path.
type GormCreditRecordRepository struct {
	db *gorm.DB
}

// NewGormCreditRecordRepository creates a new GormCreditRecordRepository
func NewGormCreditRecordRepository(db *gorm.DB) *GormCreditRecordRepository {
	return &GormCreditRecordRepository{db: db}
}

// Create appends a credit record to the log
func (r *GormCreditRecordRepository) Create(ctx context.Context, record *ledger.CreditRecord) error {
	model := models.CreditRecordModelFromDomain(record)
	return session(ctx, r.db).WithContext(ctx).Create(model).Error
}

// ListByUser lists a user's credit records, newest first, with the
// total count matching the filter.
func (r *GormCreditRecordRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter ledger.RecordFilter) ([]*ledger.CreditRecord, int64, error) {
	query := session(ctx, r.db).WithContext(ctx).
		Model(&models.CreditRecordModel{}).
		Where("user_id = ?", userID)

	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.Source != nil {
		query = query.Where("source = ?", string(*filter.Source))
	}
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var recordModels []models.CreditRecordModel
	if err := query.Order("created_at DESC").Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}

	records := make([]*ledger.CreditRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records, total, nil
}

var _ ledger.RecordRepository = (*GormCreditRecordRepository)(nil)

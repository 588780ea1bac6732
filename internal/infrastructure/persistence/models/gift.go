package models

import (
	"time"

	"github.com/coursehub/backend/internal/domain/gift"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CourseGiftModel is the persistence model for course gifts
type CourseGiftModel struct {
	AggregateModel
	CourseID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SenderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	RecipientID *uuid.UUID      `gorm:"type:uuid;index"`
	Code        string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Credit      decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	Status      string          `gorm:"type:varchar(16);not null;index"`
	AcceptedAt  *time.Time
}

// TableName specifies the table name
func (CourseGiftModel) TableName() string {
	return "course_gifts"
}

// ToDomain converts the model to a domain course gift
func (m *CourseGiftModel) ToDomain() *gift.CourseGift {
	return &gift.CourseGift{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CourseID:          m.CourseID,
		SenderID:          m.SenderID,
		RecipientID:       m.RecipientID,
		Code:              m.Code,
		Credit:            m.Credit,
		Status:            gift.Status(m.Status),
		AcceptedAt:        m.AcceptedAt,
	}
}

// CourseGiftModelFromDomain converts a domain course gift to a model
func CourseGiftModelFromDomain(g *gift.CourseGift) *CourseGiftModel {
	m := &CourseGiftModel{
		CourseID:    g.CourseID,
		SenderID:    g.SenderID,
		RecipientID: g.RecipientID,
		Code:        g.Code,
		Credit:      g.Credit,
		Status:      string(g.Status),
		AcceptedAt:  g.AcceptedAt,
	}
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	return m
}

package models

import (
	"time"

	"github.com/coursehub/backend/internal/domain/refund"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundRequestModel is the persistence model for refund requests
type RefundRequestModel struct {
	AggregateModel
	EnrollmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CourseID     uuid.UUID       `gorm:"type:uuid;not null"`
	CreditAmount decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	Status       string          `gorm:"type:varchar(16);not null;index"`
	ReviewedBy   *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt   *time.Time
	Reason       string `gorm:"type:text"`
}

// TableName specifies the table name
func (RefundRequestModel) TableName() string {
	return "refund_requests"
}

// ToDomain converts the model to a domain refund request
func (m *RefundRequestModel) ToDomain() *refund.Request {
	return &refund.Request{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		EnrollmentID:      m.EnrollmentID,
		UserID:            m.UserID,
		CourseID:          m.CourseID,
		CreditAmount:      m.CreditAmount,
		Status:            refund.Status(m.Status),
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
		Reason:            m.Reason,
	}
}

// RefundRequestModelFromDomain converts a domain refund request to a model
func RefundRequestModelFromDomain(r *refund.Request) *RefundRequestModel {
	m := &RefundRequestModel{
		EnrollmentID: r.EnrollmentID,
		UserID:       r.UserID,
		CourseID:     r.CourseID,
		CreditAmount: r.CreditAmount,
		Status:       string(r.Status),
		ReviewedBy:   r.ReviewedBy,
		ReviewedAt:   r.ReviewedAt,
		Reason:       r.Reason,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

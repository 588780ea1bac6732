package models

import (
	"github.com/coursehub/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditAccountModel is the persistence model for credit accounts
type CreditAccountModel struct {
	AggregateModel
	UserID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Balance         decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	PersonalBalance decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	LockedBalance   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	TotalEarned     decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	TotalUsed       decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
}

// TableName specifies the table name
func (CreditAccountModel) TableName() string {
	return "credit_accounts"
}

// ToDomain converts the model to a domain credit account
func (m *CreditAccountModel) ToDomain() *ledger.CreditAccount {
	return &ledger.CreditAccount{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Balance:           m.Balance,
		PersonalBalance:   m.PersonalBalance,
		LockedBalance:     m.LockedBalance,
		TotalEarned:       m.TotalEarned,
		TotalUsed:         m.TotalUsed,
	}
}

// CreditAccountModelFromDomain converts a domain credit account to a model
func CreditAccountModelFromDomain(a *ledger.CreditAccount) *CreditAccountModel {
	m := &CreditAccountModel{
		UserID:          a.UserID,
		Balance:         a.Balance,
		PersonalBalance: a.PersonalBalance,
		LockedBalance:   a.LockedBalance,
		TotalEarned:     a.TotalEarned,
		TotalUsed:       a.TotalUsed,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// CreditRecordModel is the persistence model for the append-only credit log
type CreditRecordModel struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type         string          `gorm:"type:varchar(32);not null;index"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Source       string          `gorm:"type:varchar(16);not null"`
	CourseID     *uuid.UUID      `gorm:"type:uuid;index"`
	FromUserID   *uuid.UUID      `gorm:"type:uuid"`
	ToUserID     *uuid.UUID      `gorm:"type:uuid"`
	Remark       string          `gorm:"type:text"`
}

// TableName specifies the table name
func (CreditRecordModel) TableName() string {
	return "credit_records"
}

// ToDomain converts the model to a domain credit record
func (m *CreditRecordModel) ToDomain() *ledger.CreditRecord {
	return &ledger.CreditRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		Type:         ledger.RecordType(m.Type),
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		Source:       ledger.RecordSource(m.Source),
		CourseID:     m.CourseID,
		FromUserID:   m.FromUserID,
		ToUserID:     m.ToUserID,
		Remark:       m.Remark,
	}
}

// CreditRecordModelFromDomain converts a domain credit record to a model
func CreditRecordModelFromDomain(r *ledger.CreditRecord) *CreditRecordModel {
	m := &CreditRecordModel{
		UserID:       r.UserID,
		Type:         string(r.Type),
		Amount:       r.Amount,
		BalanceAfter: r.BalanceAfter,
		Source:       string(r.Source),
		CourseID:     r.CourseID,
		FromUserID:   r.FromUserID,
		ToUserID:     r.ToUserID,
		Remark:       r.Remark,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

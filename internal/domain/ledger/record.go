package ledger

import (
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordType classifies a credit record
type RecordType string

const (
	RecordConsume           RecordType = "CONSUME"
	RecordRefund            RecordType = "REFUND"
	RecordEarn              RecordType = "EARN"
	RecordAdminAdd          RecordType = "ADMIN_ADD"
	RecordAdminDeduct       RecordType = "ADMIN_DEDUCT"
	RecordCorporateAllocate RecordType = "CORPORATE_ALLOCATE"
)

// IsValid checks if the record type is a known value
func (t RecordType) IsValid() bool {
	switch t {
	case RecordConsume, RecordRefund, RecordEarn,
		RecordAdminAdd, RecordAdminDeduct, RecordCorporateAllocate:
		return true
	}
	return false
}

// IsCredit returns true for types that add credit to the account
func (t RecordType) IsCredit() bool {
	switch t {
	case RecordEarn, RecordAdminAdd, RecordRefund:
		return true
	}
	return false
}

// String returns the string representation of the record type
func (t RecordType) String() string {
	return string(t)
}

// RecordSource tells which balance part a record drew on or fed
type RecordSource string

const (
	SourcePersonal  RecordSource = "PERSONAL"
	SourceCorporate RecordSource = "CORPORATE"
)

// IsValid checks if the source is a known value
func (s RecordSource) IsValid() bool {
	return s == SourcePersonal || s == SourceCorporate
}

// CreditRecord is one immutable entry of the append-only credit log.
// Every mutating ledger operation writes exactly one record; records
// are never updated or deleted.
type CreditRecord struct {
	shared.BaseEntity
	UserID       uuid.UUID
	Type         RecordType
	Amount       decimal.Decimal // signed: negative for debits
	BalanceAfter decimal.Decimal
	Source       RecordSource
	CourseID     *uuid.UUID
	FromUserID   *uuid.UUID
	ToUserID     *uuid.UUID
	Remark       string
}

// NewCreditRecord creates a credit record snapshotting the balance
// after the mutation it describes.
func NewCreditRecord(userID uuid.UUID, recordType RecordType, amount, balanceAfter decimal.Decimal, source RecordSource) (*CreditRecord, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !recordType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RECORD_TYPE", "Record type is not valid")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_RECORD_SOURCE", "Record source is not valid")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Record amount cannot be zero")
	}
	return &CreditRecord{
		BaseEntity:   shared.NewBaseEntity(),
		UserID:       userID,
		Type:         recordType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Source:       source,
	}, nil
}

// WithCourse links the record to a course
func (r *CreditRecord) WithCourse(courseID uuid.UUID) *CreditRecord {
	r.CourseID = &courseID
	return r
}

// WithCounterpart links the record to the other side of a transfer
func (r *CreditRecord) WithCounterpart(fromUserID, toUserID *uuid.UUID) *CreditRecord {
	r.FromUserID = fromUserID
	r.ToUserID = toUserID
	return r
}

// WithRemark attaches a free-form remark
func (r *CreditRecord) WithRemark(remark string) *CreditRecord {
	r.Remark = remark
	return r
}

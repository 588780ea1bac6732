package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coursehub/backend/internal/domain/ledger"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the credit ledger. It is the only writer of credit
// accounts and credit records; the other engines request ledger
// operations instead of mutating balances themselves. Every mutation
// locks the account row and writes its record in the same transaction.
type Service struct {
	accounts ledger.AccountRepository
	records  ledger.RecordRepository
	tx       shared.TransactionManager
}

// NewService creates a ledger service
func NewService(
	accounts ledger.AccountRepository,
	records ledger.RecordRepository,
	tx shared.TransactionManager,
) *Service {
	return &Service{
		accounts: accounts,
		records:  records,
		tx:       tx,
	}
}

// MutationResult reports the outcome of one ledger mutation
type MutationResult struct {
	RecordID        uuid.UUID           `json:"record_id"`
	UserID          uuid.UUID           `json:"user_id"`
	Amount          decimal.Decimal     `json:"amount"`
	Source          ledger.RecordSource `json:"source"`
	Balance         decimal.Decimal     `json:"balance"`
	PersonalBalance decimal.Decimal     `json:"personal_balance"`
	LockedBalance   decimal.Decimal     `json:"locked_balance"`
}

// ConsumeRequest debits a user for an enrollment
type ConsumeRequest struct {
	UserID   uuid.UUID
	Amount   decimal.Decimal
	CourseID *uuid.UUID
	Remark   string
}

// Consume debits locked credit first, then personal credit. One
// CONSUME record is written; its source is CORPORATE when any locked
// credit was used, even partially.
func (s *Service) Consume(ctx context.Context, req ConsumeRequest) (*MutationResult, error) {
	var result *MutationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.lockOrProvision(ctx, req.UserID)
		if err != nil {
			return err
		}
		breakdown, err := account.Consume(req.Amount)
		if err != nil {
			return err
		}
		record, err := ledger.NewCreditRecord(req.UserID, ledger.RecordConsume,
			req.Amount.Neg(), account.Balance, breakdown.Source)
		if err != nil {
			return err
		}
		record.WithRemark(req.Remark)
		if req.CourseID != nil {
			record.WithCourse(*req.CourseID)
		}
		if err := s.persist(ctx, account, record); err != nil {
			return err
		}
		result = s.mutationResult(account, record)
		return nil
	})
	return result, err
}

// ConsumePersonalRequest debits only the personal balance
type ConsumePersonalRequest struct {
	UserID   uuid.UUID
	Amount   decimal.Decimal
	CourseID *uuid.UUID
	Remark   string
}

/// ConsumePersonal debits the personal balance only. Gifting uses this:
// locked corporate credit is not giftable.
func (s *Service) ConsumePersonal(ctx context.Context, req ConsumePersonalRequest) (*MutationResult, error) {
	var result *MutationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.lockOrProvision(ctx, req.UserID)
		if err != nil {
			return err
		}
		if err := account.ConsumePersonal(req.Amount); err != nil {
			return err
		}
		record, err := ledger.NewCreditRecord(req.UserID, ledger.RecordConsume,
			req.Amount.Neg(), account.Balance, ledger.SourcePersonal)
		if err != nil {
			return err
		}
		record.WithRemark(req.Remark)
		if req.CourseID != nil {
			record.WithCourse(*req.CourseID)
		}
		if err := s.persist(ctx, account, record); err != nil {
			return err
		}
		result = s.mutationResult(account, record)
		return nil
	})
	return result, err
}

// AddRequest credits a user's account
type AddRequest struct {
	UserID     uuid.UUID
	Amount     decimal.Decimal
	Type       ledger.RecordType // EARN or ADMIN_ADD, per caller context
	Locked     bool
	CourseID   *uuid.UUID
	FromUserID *uuid.UUID
	Remark     string
}

// Add credits the personal or locked balance and grows the lifetime
// total. The record type reflects the caller's context.
func (s *Service) Add(ctx context.Context, req AddRequest) (*MutationResult, error) {
	if req.Type != ledger.RecordEarn && req.Type != ledger.RecordAdminAdd {
		return nil, shared.NewDomainError("INVALID_RECORD_TYPE",
			fmt.Sprintf("Record type %s is not an addition", req.Type))
	}
	var result *MutationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.lockOrProvision(ctx, req.UserID)
		if err != nil {
			return err
		}
		if err := account.Credit(req.Amount, req.Locked); err != nil {
			return err
		}
		source := ledger.SourcePersonal
		if req.Locked {
			source = ledger.SourceCorporate
		}
		record, err := ledger.NewCreditRecord(req.UserID, req.Type,
			req.Amount, account.Balance, source)
		if err != nil {
			return err
		}
		record.WithRemark(req.Remark)
		record.WithCounterpart(req.FromUserID, nil)
		if req.CourseID != nil {
			record.WithCourse(*req.CourseID)
		}
		if err := s.persist(ctx, account, record); err != nil {
			return err
		}
		result = s.mutationResult(account, record)
		return nil
	})
	return result, err
}

// RefundRequest returns previously consumed credit
type RefundRequest struct {
	UserID   uuid.UUID
	Amount   decimal.Decimal
	CourseID *uuid.UUID
	Remark   string
}

// Refund credits the personal balance. The original locked/personal
// split is not restored; this is a documented simplification.
func (s *Service) Refund(ctx context.Context, req RefundRequest) (*MutationResult, error) {
	var result *MutationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.lockOrProvision(ctx, req.UserID)
		if err != nil {
			return err
		}
		if err := account.Refund(req.Amount); err != nil {
			return err
		}
		record, err := ledger.NewCreditRecord(req.UserID, ledger.RecordRefund,
			req.Amount, account.Balance, ledger.SourcePersonal)
		if err != nil {
			return err
		}
		record.WithRemark(req.Remark)
		if req.CourseID != nil {
			record.WithCourse(*req.CourseID)
		}
		if err := s.persist(ctx, account, record); err != nil {
			return err
		}
		result = s.mutationResult(account, record)
		return nil
	})
	return result, err
}

// DeductRequest removes credit by administrative action
type DeductRequest struct {
	UserID uuid.UUID
	Amount decimal.Decimal
	Remark string
}

// Deduct debits the personal balance first, then the locked balance
func (s *Service) Deduct(ctx context.Context, req DeductRequest) (*MutationResult, error) {
	var result *MutationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.lockOrProvision(ctx, req.UserID)
		if err != nil {
			return err
		}
		if err := account.Deduct(req.Amount); err != nil {
			return err
		}
		record, err := ledger.NewCreditRecord(req.UserID, ledger.RecordAdminDeduct,
			req.Amount.Neg(), account.Balance, ledger.SourcePersonal)
		if err != nil {
			return err
		}
		record.WithRemark(req.Remark)
		if err := s.persist(ctx, account, record); err != nil {
			return err
		}
		result = s.mutationResult(account, record)
		return nil
	})
	return result, err
}

// TransferRequest moves credit from an admin to an employee
type TransferRequest struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	Amount     decimal.Decimal
	Remark     string
}

// TransferResult reports both sides of a corporate allocation
type TransferResult struct {
	Debit  *MutationResult `json:"debit"`
	Credit *MutationResult `json:"credit"`
}

// AllocateTransfer moves credit from the admin's personal balance into
// the employee's locked balance, writing one linked CORPORATE_ALLOCATE
// record per side. Membership checks are the caller's responsibility.
func (s *Service) AllocateTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.FromUserID == req.ToUserID {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Cannot allocate credit to yourself")
	}
	var result *TransferResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Lock both accounts in a stable order so concurrent
		// allocations between the same pair cannot deadlock.
		first, second := req.FromUserID, req.ToUserID
		if strings.Compare(first.String(), second.String()) > 0 {
			first, second = second, first
		}
		locked := make(map[uuid.UUID]*ledger.CreditAccount, 2)
		for _, id := range []uuid.UUID{first, second} {
			account, err := s.lockOrProvision(ctx, id)
			if err != nil {
				return err
			}
			locked[id] = account
		}
		from, to := locked[req.FromUserID], locked[req.ToUserID]

		if err := from.ConsumePersonal(req.Amount); err != nil {
			return err
		}
		if err := to.Credit(req.Amount, true); err != nil {
			return err
		}

		debit, err := ledger.NewCreditRecord(req.FromUserID, ledger.RecordCorporateAllocate,
			req.Amount.Neg(), from.Balance, ledger.SourcePersonal)
		if err != nil {
			return err
		}
		debit.WithRemark(req.Remark)
		debit.WithCounterpart(nil, &req.ToUserID)

		credit, err := ledger.NewCreditRecord(req.ToUserID, ledger.RecordCorporateAllocate,
			req.Amount, to.Balance, ledger.SourceCorporate)
		if err != nil {
			return err
		}
		credit.WithRemark(req.Remark)
		credit.WithCounterpart(&req.FromUserID, nil)

		if err := s.persist(ctx, from, debit); err != nil {
			return err
		}
		if err := s.persist(ctx, to, credit); err != nil {
			return err
		}
		result = &TransferResult{
			Debit:  s.mutationResult(from, debit),
			Credit: s.mutationResult(to, credit),
		}
		return nil
	})
	return result, err
}

// GetAccount returns the user's account, provisioning an empty one on
// first touch.
func (s *Service) GetAccount(ctx context.Context, userID uuid.UUID) (*ledger.CreditAccount, error) {
	account, err := s.accounts.FindByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	account, err = ledger.NewCreditAccount(userID)
	if err != nil {
		return nil, err
	}
	if createErr := s.accounts.Create(ctx, account); createErr != nil {
		// Lost a provisioning race; the winner's row is authoritative.
		if errors.Is(createErr, shared.ErrConflict) {
			return s.accounts.FindByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to provision account: %w", createErr)
	}
	return account, nil
}

// ListRecords returns a page of the user's credit log
func (s *Service) ListRecords(ctx context.Context, userID uuid.UUID, filter ledger.RecordFilter) ([]*ledger.CreditRecord, int64, error) {
	return s.records.ListByUser(ctx, userID, filter)
}

// lockOrProvision loads the account under a row lock, creating an
// empty account inside the transaction when none exists yet.
func (s *Service) lockOrProvision(ctx context.Context, userID uuid.UUID) (*ledger.CreditAccount, error) {
	account, err := s.accounts.FindByUserIDForUpdate(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	account, err = ledger.NewCreditAccount(userID)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}
	return account, nil
}

// persist writes the mutated account and its record as one unit
func (s *Service) persist(ctx context.Context, account *ledger.CreditAccount, record *ledger.CreditRecord) error {
	if err := s.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (s *Service) mutationResult(account *ledger.CreditAccount, record *ledger.CreditRecord) *MutationResult {
	return &MutationResult{
		RecordID:        record.ID,
		UserID:          account.UserID,
		Amount:          record.Amount,
		Source:          record.Source,
		Balance:         account.Balance,
		PersonalBalance: account.PersonalBalance,
		LockedBalance:   account.LockedBalance,
	}
}

package ledger

import (
	"fmt"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditAccount is the per-user credit account aggregate.
// Balance is always the sum of the personal and locked parts; all three
// are non-negative. Personal credit is freely consumable, refundable and
// giftable. Locked credit comes from corporate allocation and can only be
// spent on enrollment.
type CreditAccount struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Balance         decimal.Decimal
	PersonalBalance decimal.Decimal
	LockedBalance   decimal.Decimal
	TotalEarned     decimal.Decimal
	TotalUsed       decimal.Decimal
}

// NewCreditAccount creates an empty account for a user
func NewCreditAccount(userID uuid.UUID) (*CreditAccount, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return &CreditAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Balance:           decimal.Zero,
		PersonalBalance:   decimal.Zero,
		LockedBalance:     decimal.Zero,
		TotalEarned:       decimal.Zero,
		TotalUsed:         decimal.Zero,
	}, nil
}

// ConsumeBreakdown describes how a consumption was split across the
// two balance parts.
type ConsumeBreakdown struct {
	FromLocked   decimal.Decimal
	FromPersonal decimal.Decimal
	Source       RecordSource
}

// Consume debits the account for an enrollment. Locked credit is spent
// first; the remainder comes from the personal balance. The reported
// source is CORPORATE when any locked credit was used, even partially.
func (a *CreditAccount) Consume(amount decimal.Decimal) (*ConsumeBreakdown, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if a.Balance.LessThan(amount) {
		return nil, insufficientBalance(a.Balance, amount)
	}

	fromLocked := decimal.Min(a.LockedBalance, amount)
	fromPersonal := amount.Sub(fromLocked)

	a.LockedBalance = a.LockedBalance.Sub(fromLocked)
	a.PersonalBalance = a.PersonalBalance.Sub(fromPersonal)
	a.Balance = a.PersonalBalance.Add(a.LockedBalance)
	a.TotalUsed = a.TotalUsed.Add(amount)
	a.Touch()

	source := SourcePersonal
	if fromLocked.IsPositive() {
		source = SourceCorporate
	}
	return &ConsumeBreakdown{
		FromLocked:   fromLocked,
		FromPersonal: fromPersonal,
		Source:       source,
	}, nil
}

// ConsumePersonal debits the personal balance only. Used for gifting,
// where locked corporate credit must not leave the account.
func (a *CreditAccount) ConsumePersonal(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if a.PersonalBalance.LessThan(amount) {
		return insufficientBalance(a.PersonalBalance, amount)
	}
	a.PersonalBalance = a.PersonalBalance.Sub(amount)
	a.Balance = a.PersonalBalance.Add(a.LockedBalance)
	a.TotalUsed = a.TotalUsed.Add(amount)
	a.Touch()
	return nil
}

// Credit adds credit to the account. Locked credit lands in the locked
// balance, everything else in the personal balance. Lifetime earnings
// grow either way.
func (a *CreditAccount) Credit(amount decimal.Decimal, locked bool) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if locked {
		a.LockedBalance = a.LockedBalance.Add(amount)
	} else {
		a.PersonalBalance = a.PersonalBalance.Add(amount)
	}
	a.Balance = a.PersonalBalance.Add(a.LockedBalance)
	a.TotalEarned = a.TotalEarned.Add(amount)
	a.Touch()
	return nil
}

// Refund returns previously consumed credit. The refund always lands in
// the personal balance, regardless of whether the original consumption
// drew on locked credit; corporate provenance is not restored. Lifetime
// usage is reduced but never below zero.
func (a *CreditAccount) Refund(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a.PersonalBalance = a.PersonalBalance.Add(amount)
	a.Balance = a.PersonalBalance.Add(a.LockedBalance)
	a.TotalUsed = decimal.Max(decimal.Zero, a.TotalUsed.Sub(amount))
	a.Touch()
	return nil
}

// Deduct removes credit by administrative action. The personal balance
// is debited first, the remainder from the locked balance.
func (a *CreditAccount) Deduct(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if a.Balance.LessThan(amount) {
		return insufficientBalance(a.Balance, amount)
	}
	fromPersonal := decimal.Min(a.PersonalBalance, amount)
	fromLocked := amount.Sub(fromPersonal)
	a.PersonalBalance = a.PersonalBalance.Sub(fromPersonal)
	a.LockedBalance = a.LockedBalance.Sub(fromLocked)
	a.Balance = a.PersonalBalance.Add(a.LockedBalance)
	a.TotalUsed = a.TotalUsed.Add(amount)
	a.Touch()
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	return nil
}

func insufficientBalance(available, required decimal.Decimal) error {
	return shared.NewDomainError(
		shared.ErrInsufficientBalance.Code,
		fmt.Sprintf("Insufficient balance: available %s, required %s",
			available.String(), required.String()),
	)
}

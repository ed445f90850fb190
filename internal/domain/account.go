package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind distinguishes the two transaction fact types in an account history.
type EntryKind string

const (
	EntryKindCredit EntryKind = "CREDIT"
	EntryKindDebit  EntryKind = "DEBIT"
)

// Entry is a persisted transaction fact attached to an account.
// Credit and Debit are the only implementations.
type Entry interface {
	EntryID() uuid.UUID
	EntryAccountID() uuid.UUID
	EntryAmount() Money
	EntryTimestamp() time.Time
	Kind() EntryKind
}

// Credit is an immutable fact increasing an account's balance.
// Created at deposit time; never mutated or deleted afterwards.
type Credit struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    Money
	Timestamp time.Time
}

// EntryID implements Entry.
func (c Credit) EntryID() uuid.UUID { return c.ID }

// EntryAccountID implements Entry.
func (c Credit) EntryAccountID() uuid.UUID { return c.AccountID }

// EntryAmount implements Entry.
func (c Credit) EntryAmount() Money { return c.Amount }

// EntryTimestamp implements Entry.
func (c Credit) EntryTimestamp() time.Time { return c.Timestamp }

// Kind implements Entry.
func (c Credit) Kind() EntryKind { return EntryKindCredit }

// Debit is an immutable fact decreasing an account's balance.
// Created at withdrawal or transfer-source time; never mutated or deleted.
type Debit struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    Money
	Timestamp time.Time
}

// EntryID implements Entry.
func (d Debit) EntryID() uuid.UUID { return d.ID }

// EntryAccountID implements Entry.
func (d Debit) EntryAccountID() uuid.UUID { return d.AccountID }

// EntryAmount implements Entry.
func (d Debit) EntryAmount() Money { return d.Amount }

// EntryTimestamp implements Entry.
func (d Debit) EntryTimestamp() time.Time { return d.Timestamp }

// Kind implements Entry.
func (d Debit) Kind() EntryKind { return EntryKindDebit }

// Account is the aggregate root: one owner's balance in one currency, tracked
// through its ordered credit and debit history.
//
// Invariants:
//   - Every attached entry shares the account's currency (conversion happens
//     before attachment).
//   - Balance = sum(credits) - sum(debits), never negative after a committed
//     withdrawal or transfer debit.
//   - The account may be closed only at exactly zero balance.
type Account struct {
	ID              uuid.UUID
	ExternalOwnerID string
	Currency        Currency
	Credits         []Credit
	Debits          []Debit
}

// Deposit appends a credit to the history. Deposits are always legal; the only
// check is the shared-currency invariant.
func (a *Account) Deposit(credit Credit) error {
	if credit.Amount.Currency != a.Currency {
		return fmt.Errorf("%w: credit in %s attached to %s account", ErrCurrencyMismatch, credit.Amount.Currency, a.Currency)
	}
	a.Credits = append(a.Credits, credit)
	return nil
}

// Withdraw appends a debit to the history. The aggregate does not re-check
// balance sufficiency: that decision is a use-case rule evaluated against a
// freshly computed balance before calling Withdraw.
func (a *Account) Withdraw(debit Debit) error {
	if debit.Amount.Currency != a.Currency {
		return fmt.Errorf("%w: debit in %s attached to %s account", ErrCurrencyMismatch, debit.Amount.Currency, a.Currency)
	}
	a.Debits = append(a.Debits, debit)
	return nil
}

// Balance folds credits minus debits, in the account's currency.
func (a *Account) Balance() Money {
	balance := NewMoney(decimal.Zero, a.Currency)
	for _, credit := range a.Credits {
		balance.Amount = balance.Amount.Add(credit.Amount.Amount)
	}
	for _, debit := range a.Debits {
		balance.Amount = balance.Amount.Sub(debit.Amount.Amount)
	}
	return balance
}

// IsClosingAllowed reports whether the account may be closed: true iff the
// current balance is exactly zero.
func (a *Account) IsClosingAllowed() bool {
	return a.Balance().IsZero()
}

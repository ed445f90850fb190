package domain

import (
	"time"

	"github.com/google/uuid"
)

// Factory constructs new aggregate instances and transaction facts with fresh
// identifiers. Construction always succeeds; value objects are validated before
// they reach the factory.
type Factory interface {
	// NewAccount creates an account for an external owner with empty history.
	NewAccount(externalOwnerID string, currency Currency) *Account

	// NewCredit creates a credit fact against an account.
	NewCredit(account *Account, amount Money, timestamp time.Time) Credit

	// NewDebit creates a debit fact against an account.
	NewDebit(account *Account, amount Money, timestamp time.Time) Debit
}

// entityFactory implements Factory with random 128-bit identifiers.
type entityFactory struct{}

// NewEntityFactory creates the default Factory implementation.
func NewEntityFactory() Factory {
	return entityFactory{}
}

// NewAccount creates an account for an external owner with empty history.
func (entityFactory) NewAccount(externalOwnerID string, currency Currency) *Account {
	return &Account{
		ID:              uuid.New(),
		ExternalOwnerID: externalOwnerID,
		Currency:        currency,
	}
}

// NewCredit creates a credit fact against an account.
func (entityFactory) NewCredit(account *Account, amount Money, timestamp time.Time) Credit {
	return Credit{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

// NewDebit creates a debit fact against an account.
func (entityFactory) NewDebit(account *Account, amount Money, timestamp time.Time) Debit {
	return Debit{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

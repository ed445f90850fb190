package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAccountNotFound indicates that an account id does not resolve, or resolves
// to an account the acting user does not own for ownership-scoped lookups.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the interface for account persistence operations.
// Mutations are pending until the surrounding UnitOfWork saves.
type AccountRepository interface {
	// Find retrieves an account by id, scoped to the external owner.
	// Returns ErrAccountNotFound when the id does not resolve or the account
	// belongs to a different owner.
	Find(ctx context.Context, id uuid.UUID, externalOwnerID string) (*Account, error)

	// GetAccount retrieves an account by id regardless of owner.
	// Returns ErrAccountNotFound when the id does not resolve.
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetAccounts retrieves all accounts owned by the external owner.
	GetAccounts(ctx context.Context, externalOwnerID string) ([]*Account, error)

	// Add stages a new account together with its opening credit.
	Add(ctx context.Context, account *Account, credit Credit) error

	// Update stages one appended entry (credit or debit) for an account.
	Update(ctx context.Context, account *Account, entry Entry) error

	// Delete stages removal of an account and its history.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnitOfWork commits all pending repository mutations as one persistence unit.
type UnitOfWork interface {
	// Save commits everything staged since the previous Save.
	Save(ctx context.Context) error
}

// UserService resolves the acting user for ownership-scoped operations.
type UserService interface {
	// CurrentUserID returns the opaque external identifier of the current user.
	CurrentUserID(ctx context.Context) (string, error)
}

// CurrencyExchange converts money between currencies using external rates.
type CurrencyExchange interface {
	// Convert returns the amount expressed in the destination currency.
	// Conversion is fallible: rate-source failures and unsupported codes
	// surface as errors.
	Convert(ctx context.Context, amount Money, destination Currency) (Money, error)
}

// Package memory provides in-process implementations of the persistence ports,
// used by the CLI's default storage mode and by the end-to-end tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// AccountRepository keeps accounts in a map guarded by a mutex. Reads hand out
// deep copies so callers never mutate stored state before Save, mirroring how
// a row-backed repository rehydrates a fresh aggregate per query.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	staged   []func()
}

// NewAccountRepository creates an empty in-memory account repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[uuid.UUID]*domain.Account)}
}

// Find retrieves an account by its ID, scoped to the external owner
func (r *AccountRepository) Find(ctx context.Context, id uuid.UUID, externalOwnerID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok || account.ExternalOwnerID != externalOwnerID {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

// GetAccount retrieves an account by its ID regardless of owner
func (r *AccountRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

// GetAccounts retrieves all accounts owned by the external owner
func (r *AccountRepository) GetAccounts(ctx context.Context, externalOwnerID string) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []*domain.Account
	for _, account := range r.accounts {
		if account.ExternalOwnerID == externalOwnerID {
			accounts = append(accounts, cloneAccount(account))
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID.String() < accounts[j].ID.String()
	})
	return accounts, nil
}

// Add stages a new account together with its opening credit
func (r *AccountRepository) Add(ctx context.Context, account *domain.Account, credit domain.Credit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneAccount(account)
	r.staged = append(r.staged, func() {
		r.accounts[stored.ID] = stored
	})
	return nil
}

// Update stages one appended entry (credit or debit) for an account
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account, entry domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.staged = append(r.staged, func() {
		stored, ok := r.accounts[account.ID]
		if !ok {
			return
		}
		switch e := entry.(type) {
		case domain.Credit:
			stored.Credits = append(stored.Credits, e)
		case domain.Debit:
			stored.Debits = append(stored.Debits, e)
		}
	})
	return nil
}

// Delete stages removal of an account and its history
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.staged = append(r.staged, func() {
		delete(r.accounts, id)
	})
	return nil
}

// commit applies staged mutations in order. Called by the unit of work.
func (r *AccountRepository) commit() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, apply := range r.staged {
		apply()
	}
	r.staged = nil
}

func cloneAccount(account *domain.Account) *domain.Account {
	clone := &domain.Account{
		ID:              account.ID,
		ExternalOwnerID: account.ExternalOwnerID,
		Currency:        account.Currency,
	}
	clone.Credits = append([]domain.Credit(nil), account.Credits...)
	clone.Debits = append([]domain.Debit(nil), account.Debits...)
	return clone
}

// UnitOfWork applies the repository's staged mutations on Save. There is no
// rollback; abandoned staged work is simply never applied.
type UnitOfWork struct {
	repo *AccountRepository
}

// NewUnitOfWork creates a unit of work bound to an in-memory repository.
func NewUnitOfWork(repo *AccountRepository) *UnitOfWork {
	return &UnitOfWork{repo: repo}
}

// Save applies all staged mutations
func (u *UnitOfWork) Save(ctx context.Context) error {
	u.repo.commit()
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository over three tables:
// accounts, credits, and debits. All statements run on the unit of work's
// transaction so that Save commits them together.
type accountRepository struct {
	uow *UnitOfWork
}

// NewAccountRepository creates a new account repository bound to a unit of work.
func NewAccountRepository(uow *UnitOfWork) domain.AccountRepository {
	return &accountRepository{uow: uow}
}

// Find retrieves an account by its ID, scoped to the external owner
func (r *accountRepository) Find(ctx context.Context, id uuid.UUID, externalOwnerID string) (*domain.Account, error) {
	query := `
		SELECT id, external_owner_id, currency
		FROM accounts
		WHERE id = $1 AND external_owner_id = $2
	`
	return r.queryAccount(ctx, query, id, externalOwnerID)
}

// GetAccount retrieves an account by its ID regardless of owner
func (r *accountRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, external_owner_id, currency
		FROM accounts
		WHERE id = $1
	`
	return r.queryAccount(ctx, query, id)
}

// GetAccounts retrieves all accounts owned by the external owner
func (r *accountRepository) GetAccounts(ctx context.Context, externalOwnerID string) ([]*domain.Account, error) {
	tx, err := r.uow.Tx(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, external_owner_id, currency
		FROM accounts
		WHERE external_owner_id = $1
		ORDER BY id
	`
	rows, err := tx.QueryContext(ctx, query, externalOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	for _, account := range accounts {
		if err := r.loadEntries(ctx, tx, account); err != nil {
			return nil, err
		}
	}

	return accounts, nil
}

// Add stages a new account together with its opening credit
func (r *accountRepository) Add(ctx context.Context, account *domain.Account, credit domain.Credit) error {
	tx, err := r.uow.Tx(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, external_owner_id, currency)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, query, account.ID, account.ExternalOwnerID, account.Currency.String()); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return r.insertEntry(ctx, tx, credit)
}

// Update stages one appended entry (credit or debit) for an account
func (r *accountRepository) Update(ctx context.Context, account *domain.Account, entry domain.Entry) error {
	tx, err := r.uow.Tx(ctx)
	if err != nil {
		return err
	}
	return r.insertEntry(ctx, tx, entry)
}

// Delete stages removal of an account and its history
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.uow.Tx(ctx)
	if err != nil {
		return err
	}

	for _, query := range []string{
		`DELETE FROM credits WHERE account_id = $1`,
		`DELETE FROM debits WHERE account_id = $1`,
		`DELETE FROM accounts WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
	}

	return nil
}

// queryAccount runs a single-account query and loads the entry history.
func (r *accountRepository) queryAccount(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	tx, err := r.uow.Tx(ctx)
	if err != nil {
		return nil, err
	}

	account, err := scanAccount(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	if err := r.loadEntries(ctx, tx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// loadEntries fills the account's credit and debit history in insertion order.
func (r *accountRepository) loadEntries(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	creditsQuery := `
		SELECT id, account_id, amount, currency, created_at
		FROM credits
		WHERE account_id = $1
		ORDER BY created_at, id
	`
	rows, err := tx.QueryContext(ctx, creditsQuery, account.ID)
	if err != nil {
		return fmt.Errorf("failed to load credits: %w", err)
	}
	defer rows.Close()

	account.Credits = nil
	for rows.Next() {
		id, accountID, amount, createdAt, err := scanEntry(rows)
		if err != nil {
			return err
		}
		account.Credits = append(account.Credits, domain.Credit{
			ID: id, AccountID: accountID, Amount: amount, Timestamp: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate credits: %w", err)
	}

	debitsQuery := `
		SELECT id, account_id, amount, currency, created_at
		FROM debits
		WHERE account_id = $1
		ORDER BY created_at, id
	`
	rows, err = tx.QueryContext(ctx, debitsQuery, account.ID)
	if err != nil {
		return fmt.Errorf("failed to load debits: %w", err)
	}
	defer rows.Close()

	account.Debits = nil
	for rows.Next() {
		id, accountID, amount, createdAt, err := scanEntry(rows)
		if err != nil {
			return err
		}
		account.Debits = append(account.Debits, domain.Debit{
			ID: id, AccountID: accountID, Amount: amount, Timestamp: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate debits: %w", err)
	}

	return nil
}

// insertEntry writes a credit or debit fact into its table.
func (r *accountRepository) insertEntry(ctx context.Context, tx *sql.Tx, entry domain.Entry) error {
	table := "credits"
	if entry.Kind() == domain.EntryKindDebit {
		table = "debits"
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, amount, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, table)

	amount := entry.EntryAmount()
	_, err := tx.ExecContext(ctx, query,
		entry.EntryID(),
		entry.EntryAccountID(),
		amount.Amount.String(),
		amount.Currency.String(),
		entry.EntryTimestamp(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s entry: %w", table, err)
	}
	return nil
}

// rowScanner lets scanAccount work with both QueryRow and Query results.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount reads one accounts row into a domain account without history.
func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var currencyCode string

	if err := row.Scan(&account.ID, &account.ExternalOwnerID, &currencyCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	currency, err := domain.ParseCurrency(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored currency: %w", err)
	}
	account.Currency = currency

	return &account, nil
}

// scanEntry reads one credits/debits row.
func scanEntry(row rowScanner) (uuid.UUID, uuid.UUID, domain.Money, time.Time, error) {
	var id, accountID uuid.UUID
	var amountStr, currencyCode string
	var createdAt time.Time

	if err := row.Scan(&id, &accountID, &amountStr, &currencyCode, &createdAt); err != nil {
		return uuid.Nil, uuid.Nil, domain.Money{}, time.Time{}, fmt.Errorf("failed to scan entry: %w", err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.Money{}, time.Time{}, fmt.Errorf("failed to parse entry amount: %w", err)
	}
	currency, err := domain.ParseCurrency(currencyCode)
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.Money{}, time.Time{}, fmt.Errorf("failed to parse entry currency: %w", err)
	}

	return id, accountID, domain.NewMoney(amount, currency), createdAt, nil
}

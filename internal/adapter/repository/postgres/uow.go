package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork scopes repository mutations to one database transaction. The
// transaction begins lazily on first use and Save commits it; a fresh
// transaction starts on the next use. One UnitOfWork serves one request, it
// is not safe for concurrent use.
type UnitOfWork struct {
	db *DB
	tx *sql.Tx
}

// NewUnitOfWork creates a request-scoped unit of work over the connection.
func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Tx returns the current transaction, beginning one if none is open.
func (u *UnitOfWork) Tx(ctx context.Context) (*sql.Tx, error) {
	if u.tx != nil {
		return u.tx, nil
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	u.tx = tx
	return u.tx, nil
}

// Save commits everything staged since the previous Save. Calling Save with
// no open transaction is a no-op.
func (u *UnitOfWork) Save(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the open transaction, if any. Intended for request
// teardown after a failed use case.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

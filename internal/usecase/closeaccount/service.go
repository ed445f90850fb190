package closeaccount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// Input carries the raw request to close an account owned by the acting user.
type Input struct {
	AccountID uuid.UUID `validate:"required"`
}

// Result identifies the single outcome of an Execute call.
type Result string

const (
	ResultOk       Result = "OK"
	ResultInvalid  Result = "INVALID"
	ResultNotFound Result = "NOT_FOUND"
	ResultHasFunds Result = "HAS_FUNDS"
)

// Output is the tagged outcome of closing an account.
type Output struct {
	Result      Result
	FieldErrors []string
	Account     *domain.Account
}

// UseCase is the contract shared by the service and its validation decorator.
type UseCase interface {
	Execute(ctx context.Context, input Input) (Output, error)
}

// Service deletes an account once its balance is exactly zero. Closing is
// terminal: the account and its history are removed, no soft delete.
type Service struct {
	accounts domain.AccountRepository
	uow      domain.UnitOfWork
	users    domain.UserService
	logger   *slog.Logger
}

// NewService creates a new close-account Service instance.
func NewService(
	accounts domain.AccountRepository,
	uow domain.UnitOfWork,
	users domain.UserService,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		uow:      uow,
		users:    users,
		logger:   logger,
	}
}

// Execute resolves the actor, loads the account scoped to that actor, and
// deletes it when the balance is zero. A non-zero balance reports
// ResultHasFunds with no mutation.
func (s *Service) Execute(ctx context.Context, input Input) (Output, error) {
	externalUserID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("resolve current user: %w", err)
	}

	s.logger.Info("closing account", "account_id", input.AccountID, "user_id", externalUserID)

	account, err := s.accounts.Find(ctx, input.AccountID, externalUserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("account closure failed: account not found", "account_id", input.AccountID)
			return Output{Result: ResultNotFound}, nil
		}
		return Output{}, fmt.Errorf("load account: %w", err)
	}

	if !account.IsClosingAllowed() {
		s.logger.Warn("account closure denied: account still has funds", "account_id", account.ID)
		return Output{Result: ResultHasFunds}, nil
	}

	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return Output{}, fmt.Errorf("delete account: %w", err)
	}
	if err := s.uow.Save(ctx); err != nil {
		return Output{}, fmt.Errorf("commit account closure: %w", err)
	}

	s.logger.Info("account closed", "account_id", account.ID)

	return Output{Result: ResultOk, Account: account}, nil
}

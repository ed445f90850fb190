package getaccount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// Input carries the raw request to read one account. The lookup is by id,
// unscoped by owner.
type Input struct {
	AccountID uuid.UUID `validate:"required"`
}

// Result identifies the single outcome of an Execute call.
type Result string

const (
	ResultOk       Result = "OK"
	ResultInvalid  Result = "INVALID"
	ResultNotFound Result = "NOT_FOUND"
)

// Output is the tagged outcome of reading an account.
type Output struct {
	Result      Result
	FieldErrors []string
	Account     *domain.Account
}

// UseCase is the contract shared by the service and its validation decorator.
type UseCase interface {
	Execute(ctx context.Context, input Input) (Output, error)
}

// Service is the pure read of a single account.
type Service struct {
	accounts domain.AccountRepository
	logger   *slog.Logger
}

// NewService creates a new get-account Service instance.
func NewService(accounts domain.AccountRepository, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, logger: logger}
}

// Execute loads the account by id. No mutation occurs.
func (s *Service) Execute(ctx context.Context, input Input) (Output, error) {
	s.logger.Debug("retrieving account", "account_id", input.AccountID)

	account, err := s.accounts.GetAccount(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("account not found", "account_id", input.AccountID)
			return Output{Result: ResultNotFound}, nil
		}
		return Output{}, fmt.Errorf("load account: %w", err)
	}

	return Output{Result: ResultOk, Account: account}, nil
}

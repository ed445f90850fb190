package getaccounts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simaogato/wallet-backend/internal/domain"
)

// Result identifies the single outcome of an Execute call. Listing has no
// structurally invalid input and an empty list is a valid answer, so the only
// result is Ok.
type Result string

const ResultOk Result = "OK"

// Output is the tagged outcome of listing the acting user's accounts.
type Output struct {
	Result   Result
	Accounts []*domain.Account
}

// UseCase is the read contract for the account listing.
type UseCase interface {
	Execute(ctx context.Context) (Output, error)
}

// Service is the pure read of all accounts owned by the acting user.
type Service struct {
	accounts domain.AccountRepository
	users    domain.UserService
	logger   *slog.Logger
}

// NewService creates a new get-accounts Service instance.
func NewService(accounts domain.AccountRepository, users domain.UserService, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, users: users, logger: logger}
}

// Execute resolves the actor and lists their accounts. No mutation occurs.
func (s *Service) Execute(ctx context.Context) (Output, error) {
	externalUserID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("resolve current user: %w", err)
	}

	s.logger.Debug("retrieving accounts", "user_id", externalUserID)

	accounts, err := s.accounts.GetAccounts(ctx, externalUserID)
	if err != nil {
		return Output{}, fmt.Errorf("list accounts: %w", err)
	}

	s.logger.Debug("retrieved accounts", "user_id", externalUserID, "count", len(accounts))

	return Output{Result: ResultOk, Accounts: accounts}, nil
}

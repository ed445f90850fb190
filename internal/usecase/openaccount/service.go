package openaccount

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// Input carries the raw request to open an account. The account's currency is
// fixed to the currency of the opening deposit.
type Input struct {
	Amount   decimal.Decimal
	Currency string `validate:"required,len=3,uppercase"`
}

// Result identifies the single outcome of an Execute call.
type Result string

const (
	ResultOk      Result = "OK"
	ResultInvalid Result = "INVALID"
)

// Output is the tagged outcome of opening an account. Exactly one Result is
// set per Execute; collaborator failures surface as errors instead.
type Output struct {
	Result      Result
	FieldErrors []string
	Account     *domain.Account
}

// UseCase is the contract shared by the service and its validation decorator.
type UseCase interface {
	Execute(ctx context.Context, input Input) (Output, error)
}

// Service opens a new account seeded with an initial credit.
type Service struct {
	accounts domain.AccountRepository
	uow      domain.UnitOfWork
	factory  domain.Factory
	users    domain.UserService
	logger   *slog.Logger
}

// NewService creates a new open-account Service instance.
func NewService(
	accounts domain.AccountRepository,
	uow domain.UnitOfWork,
	factory domain.Factory,
	users domain.UserService,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		uow:      uow,
		factory:  factory,
		users:    users,
		logger:   logger,
	}
}

// Execute resolves the current user, builds a fresh account with an opening
// credit in the requested currency, and persists it as one unit.
func (s *Service) Execute(ctx context.Context, input Input) (Output, error) {
	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return Output{Result: ResultInvalid, FieldErrors: []string{err.Error()}}, nil
	}

	externalUserID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("resolve current user: %w", err)
	}

	s.logger.Info("opening account",
		"user_id", externalUserID,
		"amount", input.Amount,
		"currency", currency)

	account := s.factory.NewAccount(externalUserID, currency)

	// No conversion on open: the opening deposit defines the account currency.
	credit := s.factory.NewCredit(account, domain.NewMoney(input.Amount, currency), time.Now().UTC())
	if err := account.Deposit(credit); err != nil {
		return Output{}, fmt.Errorf("seed opening credit: %w", err)
	}

	if err := s.accounts.Add(ctx, account, credit); err != nil {
		return Output{}, fmt.Errorf("persist new account: %w", err)
	}
	if err := s.uow.Save(ctx); err != nil {
		return Output{}, fmt.Errorf("commit new account: %w", err)
	}

	s.logger.Info("account opened", "account_id", account.ID, "user_id", externalUserID)

	return Output{Result: ResultOk, Account: account}, nil
}

package deposit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// Input carries the raw request to deposit into an account. Deposits are not
// scoped to the acting user: any caller with a valid account id may deposit.
type Input struct {
	AccountID uuid.UUID `validate:"required"`
	Amount    decimal.Decimal
	Currency  string `validate:"required,len=3,uppercase"`
}

// Result identifies the single outcome of an Execute call.
type Result string

const (
	ResultOk       Result = "OK"
	ResultInvalid  Result = "INVALID"
	ResultNotFound Result = "NOT_FOUND"
)

// Output is the tagged outcome of a deposit.
type Output struct {
	Result      Result
	FieldErrors []string
	Credit      domain.Credit
	Account     *domain.Account
}

// UseCase is the contract shared by the service and its validation decorator.
type UseCase interface {
	Execute(ctx context.Context, input Input) (Output, error)
}

// Service converts the deposited amount into the account's currency and
// appends a credit.
type Service struct {
	accounts domain.AccountRepository
	uow      domain.UnitOfWork
	factory  domain.Factory
	exchange domain.CurrencyExchange
	logger   *slog.Logger
}

// NewService creates a new deposit Service instance.
func NewService(
	accounts domain.AccountRepository,
	uow domain.UnitOfWork,
	factory domain.Factory,
	exchange domain.CurrencyExchange,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		uow:      uow,
		factory:  factory,
		exchange: exchange,
		logger:   logger,
	}
}

// Execute loads the account, converts the amount into the account currency,
// appends the credit, and commits the mutation as one unit.
func (s *Service) Execute(ctx context.Context, input Input) (Output, error) {
	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return Output{Result: ResultInvalid, FieldErrors: []string{err.Error()}}, nil
	}
	amount := domain.NewMoney(input.Amount, currency)

	s.logger.Info("processing deposit",
		"account_id", input.AccountID,
		"amount", amount.Amount,
		"currency", amount.Currency)

	account, err := s.accounts.GetAccount(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("deposit failed: account not found", "account_id", input.AccountID)
			return Output{Result: ResultNotFound}, nil
		}
		return Output{}, fmt.Errorf("load account: %w", err)
	}

	converted, err := s.exchange.Convert(ctx, amount, account.Currency)
	if err != nil {
		return Output{}, fmt.Errorf("convert deposit amount: %w", err)
	}

	credit := s.factory.NewCredit(account, converted, time.Now().UTC())
	if err := account.Deposit(credit); err != nil {
		return Output{}, fmt.Errorf("append credit: %w", err)
	}

	if err := s.accounts.Update(ctx, account, credit); err != nil {
		return Output{}, fmt.Errorf("persist credit: %w", err)
	}
	if err := s.uow.Save(ctx); err != nil {
		return Output{}, fmt.Errorf("commit deposit: %w", err)
	}

	s.logger.Info("deposit completed",
		"account_id", account.ID,
		"amount", converted.Amount,
		"currency", converted.Currency)

	return Output{Result: ResultOk, Credit: credit, Account: account}, nil
}

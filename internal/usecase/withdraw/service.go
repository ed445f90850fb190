package withdraw

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

// Input carries the raw request to withdraw from an account owned by the
// acting user.
type Input struct {
	AccountID uuid.UUID `validate:"required"`
	Amount    decimal.Decimal
	Currency  string `validate:"required,len=3,uppercase"`
}

// Result identifies the single outcome of an Execute call.
type Result string

const (
	ResultOk         Result = "OK"
	ResultInvalid    Result = "INVALID"
	ResultNotFound   Result = "NOT_FOUND"
	ResultOutOfFunds Result = "OUT_OF_FUNDS"
)

// Output is the tagged outcome of a withdrawal.
type Output struct {
	Result      Result
	FieldErrors []string
	Debit       domain.Debit
	Account     *domain.Account
}

// UseCase is the contract shared by the service and its validation decorator.
type UseCase interface {
	Execute(ctx context.Context, input Input) (Output, error)
}

// Service withdraws from an account after checking balance sufficiency
// against a freshly computed balance.
type Service struct {
	accounts domain.AccountRepository
	uow      domain.UnitOfWork
	factory  domain.Factory
	users    domain.UserService
	exchange domain.CurrencyExchange
	logger   *slog.Logger
}

// NewService creates a new withdraw Service instance.
func NewService(
	accounts domain.AccountRepository,
	uow domain.UnitOfWork,
	factory domain.Factory,
	users domain.UserService,
	exchange domain.CurrencyExchange,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		uow:      uow,
		factory:  factory,
		users:    users,
		exchange: exchange,
		logger:   logger,
	}
}

// Execute resolves the actor, loads the account scoped to that actor, converts
// the amount into the account currency, and appends a debit when the balance
// suffices. An insufficient balance reports ResultOutOfFunds with no mutation.
func (s *Service) Execute(ctx context.Context, input Input) (Output, error) {
	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return Output{Result: ResultInvalid, FieldErrors: []string{err.Error()}}, nil
	}
	amount := domain.NewMoney(input.Amount, currency)

	externalUserID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("resolve current user: %w", err)
	}

	s.logger.Info("processing withdrawal",
		"account_id", input.AccountID,
		"user_id", externalUserID,
		"amount", amount.Amount,
		"currency", amount.Currency)

	account, err := s.accounts.Find(ctx, input.AccountID, externalUserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("withdrawal failed: account not found", "account_id", input.AccountID)
			return Output{Result: ResultNotFound}, nil
		}
		return Output{}, fmt.Errorf("load account: %w", err)
	}

	converted, err := s.exchange.Convert(ctx, amount, account.Currency)
	if err != nil {
		return Output{}, fmt.Errorf("convert withdrawal amount: %w", err)
	}

	debit := s.factory.NewDebit(account, converted, time.Now().UTC())

	// Sufficiency is a use-case rule, checked here against the balance read in
	// this request. There is no concurrency token: two concurrent withdrawals
	// can both pass this check before either commits.
	remaining, err := account.Balance().Sub(debit.Amount)
	if err != nil {
		return Output{}, fmt.Errorf("compute remaining balance: %w", err)
	}
	if remaining.IsNegative() {
		s.logger.Warn("withdrawal denied: insufficient funds", "account_id", account.ID)
		return Output{Result: ResultOutOfFunds}, nil
	}

	if err := account.Withdraw(debit); err != nil {
		return Output{}, fmt.Errorf("append debit: %w", err)
	}
	if err := s.accounts.Update(ctx, account, debit); err != nil {
		return Output{}, fmt.Errorf("persist debit: %w", err)
	}
	if err := s.uow.Save(ctx); err != nil {
		return Output{}, fmt.Errorf("commit withdrawal: %w", err)
	}

	s.logger.Info("withdrawal completed",
		"account_id", account.ID,
		"amount", converted.Amount,
		"currency", converted.Currency)

	return Output{Result: ResultOk, Debit: debit, Account: account}, nil
}

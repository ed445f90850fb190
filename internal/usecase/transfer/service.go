package transfer

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

// Input carries the raw request to transfer between two accounts. Neither side
// is ownership-scoped.
type Input struct {
	OriginAccountID      uuid.UUID `validate:"required"`
	DestinationAccountID uuid.UUID `validate:"required"`
	Amount               decimal.Decimal
	Currency             string `validate:"required,len=3,uppercase"`
}

// Result identifies the single outcome of an Execute call.
type Result string

const (
	ResultOk         Result = "OK"
	ResultInvalid    Result = "INVALID"
	ResultNotFound   Result = "NOT_FOUND"
	ResultOutOfFunds Result = "OUT_OF_FUNDS"
)

// Output is the tagged outcome of a transfer.
type Output struct {
	Result             Result
	FieldErrors        []string
	OriginAccount      *domain.Account
	Debit              domain.Debit
	DestinationAccount *domain.Account
	Credit             domain.Credit
}

// UseCase is the contract shared by the service and its validation decorator.
type UseCase interface {
	Execute(ctx context.Context, input Input) (Output, error)
}

// Service moves money between two accounts: a withdrawal from the origin
// followed by a deposit into the destination, each converted into its own
// account's currency.
type Service struct {
	accounts domain.AccountRepository
	uow      domain.UnitOfWork
	factory  domain.Factory
	exchange domain.CurrencyExchange
	logger   *slog.Logger
}

// NewService creates a new transfer Service instance.
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

// Execute loads both accounts, checks sufficiency on the origin, then performs
// the two legs. The legs are two independent commits, not one atomic
// cross-account transaction: the commit boundary is per account mutation.
func (s *Service) Execute(ctx context.Context, input Input) (Output, error) {
	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return Output{Result: ResultInvalid, FieldErrors: []string{err.Error()}}, nil
	}
	amount := domain.NewMoney(input.Amount, currency)

	s.logger.Info("processing transfer",
		"origin_account_id", input.OriginAccountID,
		"destination_account_id", input.DestinationAccountID,
		"amount", amount.Amount,
		"currency", amount.Currency)

	origin, err := s.accounts.GetAccount(ctx, input.OriginAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("transfer failed: origin account not found",
				"origin_account_id", input.OriginAccountID)
			return Output{Result: ResultNotFound}, nil
		}
		return Output{}, fmt.Errorf("load origin account: %w", err)
	}

	destination, err := s.accounts.GetAccount(ctx, input.DestinationAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("transfer failed: destination account not found",
				"destination_account_id", input.DestinationAccountID)
			return Output{Result: ResultNotFound}, nil
		}
		return Output{}, fmt.Errorf("load destination account: %w", err)
	}

	originAmount, err := s.exchange.Convert(ctx, amount, origin.Currency)
	if err != nil {
		return Output{}, fmt.Errorf("convert transfer amount to origin currency: %w", err)
	}

	debit := s.factory.NewDebit(origin, originAmount, time.Now().UTC())

	remaining, err := origin.Balance().Sub(debit.Amount)
	if err != nil {
		return Output{}, fmt.Errorf("compute remaining balance: %w", err)
	}
	if remaining.IsNegative() {
		s.logger.Warn("transfer denied: insufficient funds in origin account",
			"origin_account_id", origin.ID)
		return Output{Result: ResultOutOfFunds}, nil
	}

	// First leg: withdraw from the origin and commit.
	if err := origin.Withdraw(debit); err != nil {
		return Output{}, fmt.Errorf("append debit: %w", err)
	}
	if err := s.accounts.Update(ctx, origin, debit); err != nil {
		return Output{}, fmt.Errorf("persist debit: %w", err)
	}
	if err := s.uow.Save(ctx); err != nil {
		return Output{}, fmt.Errorf("commit withdrawal leg: %w", err)
	}

	// Second leg: convert independently into the destination currency,
	// deposit, and commit. A crash between the legs leaves the amount
	// withdrawn but not deposited; there is no compensation step.
	destinationAmount, err := s.exchange.Convert(ctx, amount, destination.Currency)
	if err != nil {
		return Output{}, fmt.Errorf("convert transfer amount to destination currency: %w", err)
	}

	credit := s.factory.NewCredit(destination, destinationAmount, time.Now().UTC())
	if err := destination.Deposit(credit); err != nil {
		return Output{}, fmt.Errorf("append credit: %w", err)
	}
	if err := s.accounts.Update(ctx, destination, credit); err != nil {
		return Output{}, fmt.Errorf("persist credit: %w", err)
	}
	if err := s.uow.Save(ctx); err != nil {
		return Output{}, fmt.Errorf("commit deposit leg: %w", err)
	}

	s.logger.Info("transfer completed",
		"origin_account_id", origin.ID,
		"destination_account_id", destination.ID,
		"amount", amount.Amount,
		"currency", amount.Currency)

	return Output{
		Result:             ResultOk,
		OriginAccount:      origin,
		Debit:              debit,
		DestinationAccount: destination,
		Credit:             credit,
	}, nil
}

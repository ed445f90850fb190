// Command walletd is the wallet's command line entry point. It wires the use
// cases against the configured storage, exchange, and identity backends and
// runs one operation per invocation. With the in-memory backend the state
// lives only for the length of the process, which suits demos and tests; use
// the postgres backend for durable state.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wallet-backend/internal/adapter/exchange/ratesapi"
	"github.com/simaogato/wallet-backend/internal/adapter/exchange/static"
	"github.com/simaogato/wallet-backend/internal/adapter/identity"
	"github.com/simaogato/wallet-backend/internal/adapter/repository/memory"
	"github.com/simaogato/wallet-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/wallet-backend/internal/config"
	"github.com/simaogato/wallet-backend/internal/domain"
	"github.com/simaogato/wallet-backend/internal/usecase/closeaccount"
	"github.com/simaogato/wallet-backend/internal/usecase/deposit"
	"github.com/simaogato/wallet-backend/internal/usecase/getaccount"
	"github.com/simaogato/wallet-backend/internal/usecase/getaccounts"
	"github.com/simaogato/wallet-backend/internal/usecase/openaccount"
	"github.com/simaogato/wallet-backend/internal/usecase/transfer"
	"github.com/simaogato/wallet-backend/internal/usecase/withdraw"
)

const usage = `Usage: walletd <command> [arguments]
Commands:
  open <amount> <currency>
  deposit <account_id> <amount> <currency>
  withdraw <account_id> <amount> <currency>
  transfer <origin_id> <destination_id> <amount> <currency>
  close <account_id>
  get <account_id>
  list
Environment:
  WALLET_USER      acting user's external ID (required)
  WALLET_STORAGE   memory | postgres (default memory)
  WALLET_EXCHANGE  static | ratesapi (default static)
  LOG_LEVEL        debug | info | warn | error (default info)`

// app bundles the wired use cases behind their validation decorators.
type app struct {
	openAccount  openaccount.UseCase
	deposit      deposit.UseCase
	withdraw     withdraw.UseCase
	transfer     transfer.UseCase
	closeAccount closeaccount.UseCase
	getAccount   getaccount.UseCase
	getAccounts  getaccounts.UseCase
	cleanup      func()
}

func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	var (
		accounts domain.AccountRepository
		uow      domain.UnitOfWork
		cleanup  = func() {}
	)
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.NewDB(cfg.Storage.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		pgUow := postgres.NewUnitOfWork(db)
		accounts = postgres.NewAccountRepository(pgUow)
		uow = pgUow
		cleanup = func() { db.Close() }
	default:
		repo := memory.NewAccountRepository()
		accounts = repo
		uow = memory.NewUnitOfWork(repo)
	}

	var exchange domain.CurrencyExchange
	switch cfg.Exchange.Backend {
	case "ratesapi":
		exchange = ratesapi.NewExchange(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, logger)
	default:
		exchange = static.NewExchange(static.DefaultRates())
	}

	factory := domain.NewEntityFactory()
	users := identity.NewStaticUserService(cfg.Identity.UserID)

	return &app{
		openAccount:  openaccount.NewValidator(openaccount.NewService(accounts, uow, factory, users, logger)),
		deposit:      deposit.NewValidator(deposit.NewService(accounts, uow, factory, exchange, logger)),
		withdraw:     withdraw.NewValidator(withdraw.NewService(accounts, uow, factory, users, exchange, logger)),
		transfer:     transfer.NewValidator(transfer.NewService(accounts, uow, factory, exchange, logger)),
		closeAccount: closeaccount.NewValidator(closeaccount.NewService(accounts, uow, users, logger)),
		getAccount:   getaccount.NewValidator(getaccount.NewService(accounts, logger)),
		getAccounts:  getaccounts.NewService(accounts, users, logger),
		cleanup:      cleanup,
	}, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger.NewLogger(os.Stderr)

	application, err := buildApp(cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer application.cleanup()

	ctx := context.Background()
	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app, command string, args []string) error {
	switch command {
	case "open":
		if len(args) < 2 {
			return fmt.Errorf("usage: open <amount> <currency>")
		}
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		output, err := application.openAccount.Execute(ctx, openaccount.Input{
			Amount:   amount,
			Currency: args[1],
		})
		if err != nil {
			return err
		}
		if output.Result != openaccount.ResultOk {
			return outcomeError(string(output.Result), output.FieldErrors)
		}
		printAccount(output.Account)
		return nil

	case "deposit":
		if len(args) < 3 {
			return fmt.Errorf("usage: deposit <account_id> <amount> <currency>")
		}
		accountID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		output, err := application.deposit.Execute(ctx, deposit.Input{
			AccountID: accountID,
			Amount:    amount,
			Currency:  args[2],
		})
		if err != nil {
			return err
		}
		if output.Result != deposit.ResultOk {
			return outcomeError(string(output.Result), output.FieldErrors)
		}
		fmt.Printf("Deposited %s into account %s. New balance: %s\n",
			output.Credit.Amount, output.Account.ID, output.Account.Balance())
		return nil

	case "withdraw":
		if len(args) < 3 {
			return fmt.Errorf("usage: withdraw <account_id> <amount> <currency>")
		}
		accountID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		output, err := application.withdraw.Execute(ctx, withdraw.Input{
			AccountID: accountID,
			Amount:    amount,
			Currency:  args[2],
		})
		if err != nil {
			return err
		}
		if output.Result != withdraw.ResultOk {
			return outcomeError(string(output.Result), output.FieldErrors)
		}
		fmt.Printf("Withdrew %s from account %s. New balance: %s\n",
			output.Debit.Amount, output.Account.ID, output.Account.Balance())
		return nil

	case "transfer":
		if len(args) < 4 {
			return fmt.Errorf("usage: transfer <origin_id> <destination_id> <amount> <currency>")
		}
		originID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid origin account id: %w", err)
		}
		destinationID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid destination account id: %w", err)
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		output, err := application.transfer.Execute(ctx, transfer.Input{
			OriginAccountID:      originID,
			DestinationAccountID: destinationID,
			Amount:               amount,
			Currency:             args[3],
		})
		if err != nil {
			return err
		}
		if output.Result != transfer.ResultOk {
			return outcomeError(string(output.Result), output.FieldErrors)
		}
		fmt.Printf("Transferred %s from %s to %s (credited %s)\n",
			output.Debit.Amount, output.OriginAccount.ID,
			output.DestinationAccount.ID, output.Credit.Amount)
		return nil

	case "close":
		if len(args) < 1 {
			return fmt.Errorf("usage: close <account_id>")
		}
		accountID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
		output, err := application.closeAccount.Execute(ctx, closeaccount.Input{AccountID: accountID})
		if err != nil {
			return err
		}
		if output.Result != closeaccount.ResultOk {
			return outcomeError(string(output.Result), output.FieldErrors)
		}
		fmt.Printf("Closed account %s\n", accountID)
		return nil

	case "get":
		if len(args) < 1 {
			return fmt.Errorf("usage: get <account_id>")
		}
		accountID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
		output, err := application.getAccount.Execute(ctx, getaccount.Input{AccountID: accountID})
		if err != nil {
			return err
		}
		if output.Result != getaccount.ResultOk {
			return outcomeError(string(output.Result), output.FieldErrors)
		}
		printAccount(output.Account)
		return nil

	case "list":
		output, err := application.getAccounts.Execute(ctx)
		if err != nil {
			return err
		}
		if len(output.Accounts) == 0 {
			fmt.Println("No accounts")
			return nil
		}
		for _, account := range output.Accounts {
			printAccount(account)
		}
		return nil

	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func outcomeError(result string, fieldErrors []string) error {
	if len(fieldErrors) > 0 {
		return fmt.Errorf("%s: %v", result, fieldErrors)
	}
	return fmt.Errorf("%s", result)
}

func printAccount(account *domain.Account) {
	fmt.Printf("Account %s [%s] balance=%s credits=%d debits=%d\n",
		account.ID, account.Currency, account.Balance(),
		len(account.Credits), len(account.Debits))
}

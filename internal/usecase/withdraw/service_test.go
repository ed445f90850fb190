package withdraw

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wallet-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAccountRepository is a mock implementation of domain.AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Find(ctx context.Context, id uuid.UUID, externalOwnerID string) (*domain.Account, error) {
	args := m.Called(ctx, id, externalOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccounts(ctx context.Context, externalOwnerID string) ([]*domain.Account, error) {
	args := m.Called(ctx, externalOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Add(ctx context.Context, account *domain.Account, credit domain.Credit) error {
	args := m.Called(ctx, account, credit)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account, entry domain.Entry) error {
	args := m.Called(ctx, account, entry)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of domain.UnitOfWork for testing
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Save(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserService is a mock implementation of domain.UserService for testing
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CurrentUserID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockCurrencyExchange is a mock implementation of domain.CurrencyExchange for testing
type MockCurrencyExchange struct {
	mock.Mock
}

func (m *MockCurrencyExchange) Convert(ctx context.Context, amount domain.Money, destination domain.Currency) (domain.Money, error) {
	args := m.Called(ctx, amount, destination)
	return args.Get(0).(domain.Money), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fundedAccount(t *testing.T, factory domain.Factory, owner string, currency domain.Currency, amount int64) *domain.Account {
	t.Helper()
	account := factory.NewAccount(owner, currency)
	credit := factory.NewCredit(account, domain.NewMoney(decimal.NewFromInt(amount), currency), time.Now())
	require.NoError(t, account.Deposit(credit))
	return account
}

func TestWithdraw_SufficientFunds(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockUsers := new(MockUserService)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	service := NewService(mockRepo, mockUow, factory, mockUsers, mockExchange, testLogger())

	account := fundedAccount(t, factory, "user-1", domain.CurrencyUSD, 100)
	amount := domain.NewMoney(decimal.NewFromInt(40), domain.CurrencyUSD)

	mockUsers.On("CurrentUserID", ctx).Return("user-1", nil)
	mockRepo.On("Find", ctx, account.ID, "user-1").Return(account, nil)
	mockExchange.On("Convert", ctx, amount, domain.CurrencyUSD).Return(amount, nil)
	mockRepo.On("Update", ctx, account, mock.AnythingOfType("domain.Debit")).Return(nil)
	mockUow.On("Save", ctx).Return(nil)

	output, err := service.Execute(ctx, Input{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(40),
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultOk, output.Result)
	assert.True(t, account.Balance().Equal(domain.NewMoney(decimal.NewFromInt(60), domain.CurrencyUSD)))
	mockRepo.AssertExpectations(t)
	mockUow.AssertExpectations(t)
}

func TestWithdraw_ExactBalanceIsAllowed(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockUsers := new(MockUserService)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	service := NewService(mockRepo, mockUow, factory, mockUsers, mockExchange, testLogger())

	account := fundedAccount(t, factory, "user-1", domain.CurrencyUSD, 100)
	amount := domain.NewMoney(decimal.NewFromInt(100), domain.CurrencyUSD)

	mockUsers.On("CurrentUserID", ctx).Return("user-1", nil)
	mockRepo.On("Find", ctx, account.ID, "user-1").Return(account, nil)
	mockExchange.On("Convert", ctx, amount, domain.CurrencyUSD).Return(amount, nil)
	mockRepo.On("Update", ctx, account, mock.AnythingOfType("domain.Debit")).Return(nil)
	mockUow.On("Save", ctx).Return(nil)

	output, err := service.Execute(ctx, Input{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(100),
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultOk, output.Result)
	assert.True(t, account.Balance().IsZero())
}

func TestWithdraw_OutOfFunds(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockUsers := new(MockUserService)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	service := NewService(mockRepo, mockUow, factory, mockUsers, mockExchange, testLogger())

	account := fundedAccount(t, factory, "user-1", domain.CurrencyUSD, 100)
	amount := domain.NewMoney(decimal.NewFromInt(500), domain.CurrencyUSD)

	mockUsers.On("CurrentUserID", ctx).Return("user-1", nil)
	mockRepo.On("Find", ctx, account.ID, "user-1").Return(account, nil)
	mockExchange.On("Convert", ctx, amount, domain.CurrencyUSD).Return(amount, nil)

	output, err := service.Execute(ctx, Input{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(500),
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultOutOfFunds, output.Result)
	assert.True(t, account.Balance().Equal(domain.NewMoney(decimal.NewFromInt(100), domain.CurrencyUSD)),
		"balance unchanged after denied withdrawal")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	mockUow.AssertNotCalled(t, "Save", mock.Anything)
}

func TestWithdraw_NotOwnedAccountIsNotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockUsers := new(MockUserService)
	mockExchange := new(MockCurrencyExchange)

	service := NewService(mockRepo, mockUow, domain.NewEntityFactory(), mockUsers, mockExchange, testLogger())

	accountID := uuid.New()
	mockUsers.On("CurrentUserID", ctx).Return("user-2", nil)
	mockRepo.On("Find", ctx, accountID, "user-2").Return(nil, domain.ErrAccountNotFound)

	output, err := service.Execute(ctx, Input{
		AccountID: accountID,
		Amount:    decimal.NewFromInt(10),
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultNotFound, output.Result)
}

// TestWithdraw_ConcurrentReadsCanOverdraw documents the read-modify-write gap:
// without a concurrency token, two withdrawals that both load the account
// before either commits each see a sufficient balance, and together they
// overdraw it. The repository mock replays the same pre-commit snapshot to
// simulate the interleaving deterministically.
func TestWithdraw_ConcurrentReadsCanOverdraw(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockUsers := new(MockUserService)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	service := NewService(mockRepo, mockUow, factory, mockUsers, mockExchange, testLogger())

	account := fundedAccount(t, factory, "user-1", domain.CurrencyUSD, 100)
	amount := domain.NewMoney(decimal.NewFromInt(80), domain.CurrencyUSD)

	// Both executions read the same snapshot: balance 100, each withdrawal of
	// 80 individually sufficient, jointly insufficient.
	firstSnapshot := &domain.Account{
		ID: account.ID, ExternalOwnerID: account.ExternalOwnerID,
		Currency: account.Currency, Credits: append([]domain.Credit(nil), account.Credits...),
	}
	secondSnapshot := &domain.Account{
		ID: account.ID, ExternalOwnerID: account.ExternalOwnerID,
		Currency: account.Currency, Credits: append([]domain.Credit(nil), account.Credits...),
	}

	mockUsers.On("CurrentUserID", ctx).Return("user-1", nil)
	mockRepo.On("Find", ctx, account.ID, "user-1").Return(firstSnapshot, nil).Once()
	mockRepo.On("Find", ctx, account.ID, "user-1").Return(secondSnapshot, nil).Once()
	mockExchange.On("Convert", ctx, amount, domain.CurrencyUSD).Return(amount, nil)
	mockRepo.On("Update", ctx, mock.Anything, mock.AnythingOfType("domain.Debit")).Return(nil)
	mockUow.On("Save", ctx).Return(nil)

	input := Input{AccountID: account.ID, Amount: decimal.NewFromInt(80), Currency: "USD"}

	first, err := service.Execute(ctx, input)
	require.NoError(t, err)
	second, err := service.Execute(ctx, input)
	require.NoError(t, err)

	// Both succeed against their own stale read; the combined committed debits
	// exceed the funds that ever existed.
	assert.Equal(t, ResultOk, first.Result)
	assert.Equal(t, ResultOk, second.Result)

	totalDebited := first.Debit.Amount.Amount.Add(second.Debit.Amount.Amount)
	assert.True(t, totalDebited.GreaterThan(decimal.NewFromInt(100)),
		"lost update: committed debits exceed the original balance")
}

func TestWithdrawValidator_RejectsWithoutCollaboratorCalls(t *testing.T) {
	ctx := context.Background()
	// Mocks carry no expectations: any collaborator call fails the test.
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockUsers := new(MockUserService)
	mockExchange := new(MockCurrencyExchange)

	useCase := NewValidator(NewService(mockRepo, mockUow, domain.NewEntityFactory(), mockUsers, mockExchange, testLogger()))

	tests := []struct {
		name  string
		input Input
	}{
		{
			name:  "zero amount",
			input: Input{AccountID: uuid.New(), Amount: decimal.Zero, Currency: "USD"},
		},
		{
			name:  "negative amount",
			input: Input{AccountID: uuid.New(), Amount: decimal.NewFromInt(-5), Currency: "USD"},
		},
		{
			name:  "unsupported currency",
			input: Input{AccountID: uuid.New(), Amount: decimal.NewFromInt(5), Currency: "JPY"},
		},
		{
			name:  "malformed currency",
			input: Input{AccountID: uuid.New(), Amount: decimal.NewFromInt(5), Currency: "usd"},
		},
		{
			name:  "missing account id",
			input: Input{Amount: decimal.NewFromInt(5), Currency: "USD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := useCase.Execute(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, ResultInvalid, output.Result)
			assert.NotEmpty(t, output.FieldErrors)
		})
	}

	mockRepo.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
	mockExchange.AssertExpectations(t)
}

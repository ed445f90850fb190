package deposit

import (
	"context"
	"errors"
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

func TestDeposit_SameCurrency(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	service := NewService(mockRepo, mockUow, factory, mockExchange, testLogger())

	account := factory.NewAccount("user-1", domain.CurrencyUSD)
	opening := factory.NewCredit(account, domain.NewMoney(decimal.NewFromInt(100), domain.CurrencyUSD), time.Now())
	require.NoError(t, account.Deposit(opening))

	amount := domain.NewMoney(decimal.NewFromInt(50), domain.CurrencyUSD)

	mockRepo.On("GetAccount", ctx, account.ID).Return(account, nil)
	mockExchange.On("Convert", ctx, amount, domain.CurrencyUSD).Return(amount, nil)
	mockRepo.On("Update", ctx, account, mock.AnythingOfType("domain.Credit")).Return(nil)
	mockUow.On("Save", ctx).Return(nil)

	output, err := service.Execute(ctx, Input{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(50),
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultOk, output.Result)
	assert.True(t, output.Credit.Amount.Equal(amount))
	assert.True(t, account.Balance().Equal(domain.NewMoney(decimal.NewFromInt(150), domain.CurrencyUSD)))
	mockRepo.AssertExpectations(t)
	mockUow.AssertExpectations(t)
}

func TestDeposit_ConvertsIntoAccountCurrency(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	service := NewService(mockRepo, mockUow, factory, mockExchange, testLogger())

	account := factory.NewAccount("user-1", domain.CurrencyUSD)

	requested := domain.NewMoney(decimal.NewFromInt(50), domain.CurrencyEUR)
	converted := domain.NewMoney(decimal.RequireFromString("54.25"), domain.CurrencyUSD)

	mockRepo.On("GetAccount", ctx, account.ID).Return(account, nil)
	mockExchange.On("Convert", ctx, requested, domain.CurrencyUSD).Return(converted, nil)
	mockRepo.On("Update", ctx, account, mock.MatchedBy(func(entry domain.Entry) bool {
		// The stored credit must already be in the account currency.
		return entry.Kind() == domain.EntryKindCredit && entry.EntryAmount().Equal(converted)
	})).Return(nil)
	mockUow.On("Save", ctx).Return(nil)

	output, err := service.Execute(ctx, Input{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(50),
		Currency:  "EUR",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultOk, output.Result)
	assert.Equal(t, domain.CurrencyUSD, output.Credit.Amount.Currency)
	assert.True(t, account.Balance().Equal(converted))
	mockRepo.AssertExpectations(t)
}

func TestDeposit_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockExchange := new(MockCurrencyExchange)

	service := NewService(mockRepo, mockUow, domain.NewEntityFactory(), mockExchange, testLogger())

	missingID := uuid.New()
	mockRepo.On("GetAccount", ctx, missingID).Return(nil, domain.ErrAccountNotFound)

	output, err := service.Execute(ctx, Input{
		AccountID: missingID,
		Amount:    decimal.NewFromInt(10),
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultNotFound, output.Result)
	mockUow.AssertNotCalled(t, "Save", mock.Anything)
}

func TestDeposit_ExchangeFailurePropagates(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	service := NewService(mockRepo, mockUow, factory, mockExchange, testLogger())

	account := factory.NewAccount("user-1", domain.CurrencyUSD)
	requested := domain.NewMoney(decimal.NewFromInt(50), domain.CurrencyEUR)

	exchangeErr := errors.New("rate service unreachable")
	mockRepo.On("GetAccount", ctx, account.ID).Return(account, nil)
	mockExchange.On("Convert", ctx, requested, domain.CurrencyUSD).Return(domain.Money{}, exchangeErr)

	_, err := service.Execute(ctx, Input{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(50),
		Currency:  "EUR",
	})

	assert.ErrorIs(t, err, exchangeErr)
	assert.Empty(t, account.Credits, "no mutation on collaborator failure")
	mockUow.AssertNotCalled(t, "Save", mock.Anything)
}

func TestDepositValidator_RejectsWithoutCollaboratorCalls(t *testing.T) {
	ctx := context.Background()
	// Mocks carry no expectations: any collaborator call fails the test.
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockExchange := new(MockCurrencyExchange)

	useCase := NewValidator(NewService(mockRepo, mockUow, domain.NewEntityFactory(), mockExchange, testLogger()))

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
	mockExchange.AssertExpectations(t)
}

func TestDepositValidator_ForwardsValidInput(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockUow := new(MockUnitOfWork)
	mockExchange := new(MockCurrencyExchange)
	factory := domain.NewEntityFactory()

	useCase := NewValidator(NewService(mockRepo, mockUow, factory, mockExchange, testLogger()))

	account := factory.NewAccount("user-1", domain.CurrencyUSD)
	amount := domain.NewMoney(decimal.NewFromInt(25), domain.CurrencyUSD)

	mockRepo.On("GetAccount", ctx, account.ID).Return(account, nil)
	mockExchange.On("Convert", ctx, amount, domain.CurrencyUSD).Return(amount, nil)
	mockRepo.On("Update", ctx, account, mock.AnythingOfType("domain.Credit")).Return(nil)
	mockUow.On("Save", ctx).Return(nil)

	output, err := useCase.Execute(ctx, Input{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(25),
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, ResultOk, output.Result)
}

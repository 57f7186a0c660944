package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vaultis/bankledger/internal/apperrors"
	"github.com/vaultis/bankledger/internal/core/domain"
	portsrepo "github.com/vaultis/bankledger/internal/core/ports/repositories"
	portssvc "github.com/vaultis/bankledger/internal/core/ports/services"
	"github.com/vaultis/bankledger/internal/core/services"
	"github.com/vaultis/bankledger/internal/dto"
)

// --- Deterministic domain collaborators ---

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGenerator struct {
	n int
}

func (g *seqIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

func (g *seqIDGenerator) NewAccountNumber() string {
	g.n++
	return fmt.Sprintf("%04d-0000-0000", g.n)
}

func (g *seqIDGenerator) NewReference(now time.Time) string {
	g.n++
	return fmt.Sprintf("TXN-%s-%05d", now.UTC().Format("20060102150405"), g.n)
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// MockLedgerRepository is a mock type for the LedgerRepositoryFacade interface.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerRepository) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockLedgerRepository) SaveAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindTransactionByAccountAndKey(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// WithTx executes fn against the mock itself so nested expectations apply.
func (m *MockLedgerRepository) WithTx(ctx context.Context, fn func(portsrepo.LedgerRepositoryFacade) error) error {
	return fn(m)
}

// --- Test helpers ---

// fixtureIDs is shared across fixture calls so accounts created separately
// within a test get distinct identifiers.
var fixtureIDs = &seqIDGenerator{}

func newAccountFixture(t interface{ FailNow() }, currency string) *domain.Account {
	acc, err := domain.NewAccount(fixedClock{now: testNow}, fixtureIDs, "Grace Hopper", domain.AccountTypeChecking, currency)
	if err != nil {
		t.FailNow()
	}
	return acc
}

func fundedAccountFixture(t interface{ FailNow() }, currency, amount string) *domain.Account {
	acc := newAccountFixture(t, currency)
	money, err := domain.NewMoney(decimal.RequireFromString(amount), currency)
	if err != nil {
		t.FailNow()
	}
	if _, err := acc.Deposit(money, "seed", ""); err != nil {
		t.FailNow()
	}
	return acc
}

// --- Test suite ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewAccountService(
		suite.mockRepo,
		services.WithClock(fixedClock{now: testNow}),
		services.WithIDGenerator(&seqIDGenerator{}),
	)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_Success() {
	ctx := context.Background()
	req := dto.OpenAccountRequest{
		HolderName:   "Grace Hopper",
		AccountType:  domain.AccountTypeSavings,
		CurrencyCode: "USD",
	}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("*domain.Account")).Return(nil).Once()

	account, err := suite.service.OpenAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Regexp(`^\d{4}-0000-0000$`, account.AccountNumber)
	suite.Equal(domain.AccountStatusActive, account.Status)
	suite.True(account.Balance.IsZero())
	suite.Equal("USD", account.Balance.CurrencyCode)
	suite.Equal(testNow, account.OpenedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestOpenAccount_RetriesOnNumberCollision() {
	ctx := context.Background()
	req := dto.OpenAccountRequest{
		HolderName:   "Grace Hopper",
		AccountType:  domain.AccountTypeChecking,
		CurrencyCode: "EUR",
	}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("*domain.Account")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("*domain.Account")).
		Return(nil).Once()

	account, err := suite.service.OpenAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.mockRepo.AssertNumberOfCalls(suite.T(), "SaveAccount", 2)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_InvalidHolderName() {
	ctx := context.Background()

	_, err := suite.service.OpenAccount(ctx, dto.OpenAccountRequest{
		HolderName:   "   ",
		AccountType:  domain.AccountTypeChecking,
		CurrencyCode: "USD",
	})

	var inv *apperrors.InvariantViolationError
	suite.Require().ErrorAs(err, &inv)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	acc := fundedAccountFixture(suite.T(), "USD", "100")

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, acc.AccountID, "d1").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, acc.AccountID).Return(acc, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, acc).Return(nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := suite.service.Deposit(ctx, acc.AccountID, dto.MovementRequest{
		Amount:         decimal.RequireFromString("25.50"),
		CurrencyCode:   "USD",
		IdempotencyKey: "d1",
		Description:    "payroll",
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.TransactionTypeDeposit, txn.Type)
	suite.True(txn.BalanceAfter.Amount.Equal(decimal.RequireFromString("125.50")))
	suite.True(acc.Balance.Amount.Equal(decimal.RequireFromString("125.50")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeposit_ReplaysStoredTransaction() {
	ctx := context.Background()
	stored := &domain.Transaction{
		TransactionID:  "txn-existing",
		IdempotencyKey: "d1",
		Status:         domain.TransactionStatusCompleted,
	}

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, "acc-1", "d1").
		Return(stored, nil).Once()

	txn, err := suite.service.Deposit(ctx, "acc-1", dto.MovementRequest{
		Amount:         decimal.NewFromInt(10),
		CurrencyCode:   "USD",
		IdempotencyKey: "d1",
	})

	suite.Require().NoError(err)
	suite.Equal("txn-existing", txn.TransactionID)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByID")
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestDeposit_RetriesOnVersionConflict() {
	ctx := context.Background()
	first := fundedAccountFixture(suite.T(), "USD", "100")
	second := fundedAccountFixture(suite.T(), "USD", "100")

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, first.AccountID, "d1").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, first.AccountID).Return(first, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, first).Return(apperrors.ErrConflict).Once()
	suite.mockRepo.On("FindAccountByID", ctx, first.AccountID).Return(second, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, second).Return(nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := suite.service.Deposit(ctx, first.AccountID, dto.MovementRequest{
		Amount:         decimal.NewFromInt(10),
		CurrencyCode:   "USD",
		IdempotencyKey: "d1",
	})

	suite.Require().NoError(err)
	suite.True(txn.BalanceAfter.Amount.Equal(decimal.RequireFromString("110")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestWithdraw_InsufficientFunds() {
	ctx := context.Background()
	acc := fundedAccountFixture(suite.T(), "USD", "50")

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, acc.AccountID, "w1").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, acc.AccountID).Return(acc, nil).Once()

	_, err := suite.service.Withdraw(ctx, acc.AccountID, dto.MovementRequest{
		Amount:         decimal.NewFromInt(100),
		CurrencyCode:   "USD",
		IdempotencyKey: "w1",
	})

	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)
	suite.True(insufficient.Available.Equal(decimal.RequireFromString("50")))
	suite.True(insufficient.Requested.Equal(decimal.RequireFromString("100")))
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *AccountServiceTestSuite) TestFreezeAccount_Success() {
	ctx := context.Background()
	acc := fundedAccountFixture(suite.T(), "USD", "10")

	suite.mockRepo.On("FindAccountByID", ctx, acc.AccountID).Return(acc, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, acc).Return(nil).Once()

	frozen, err := suite.service.FreezeAccount(ctx, acc.AccountID, "compliance review")

	suite.Require().NoError(err)
	suite.Equal(domain.AccountStatusFrozen, frozen.Status)
	suite.Equal("compliance review", frozen.FreezeReason)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCloseAccount_NonZeroBalance() {
	ctx := context.Background()
	acc := fundedAccountFixture(suite.T(), "USD", "10")

	suite.mockRepo.On("FindAccountByID", ctx, acc.AccountID).Return(acc, nil).Once()

	_, err := suite.service.CloseAccount(ctx, acc.AccountID)

	var inv *apperrors.InvariantViolationError
	suite.Require().ErrorAs(err, &inv)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	ctx := context.Background()

	suite.mockRepo.On("FindAccountByID", ctx, "missing").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccountByID(ctx, "missing")
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

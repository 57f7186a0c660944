package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vaultis/bankledger/internal/apperrors"
	"github.com/vaultis/bankledger/internal/core/domain"
	portssvc "github.com/vaultis/bankledger/internal/core/ports/services"
	"github.com/vaultis/bankledger/internal/core/services"
	"github.com/vaultis/bankledger/internal/dto"
)

type TransferServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	service  portssvc.TransferSvcFacade
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewTransferService(suite.mockRepo)
}

func (suite *TransferServiceTestSuite) transferRequest(source, dest *domain.Account, amount string) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		SourceAccountID:      source.AccountID,
		DestinationAccountID: dest.AccountID,
		Amount:               decimal.RequireFromString(amount),
		CurrencyCode:         "USD",
		IdempotencyKey:       "k",
	}
}

func (suite *TransferServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	source := fundedAccountFixture(suite.T(), "USD", "500")
	dest := newAccountFixture(suite.T(), "USD")
	req := suite.transferRequest(source, dest, "200")

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, source.AccountID, "k").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, source.AccountID).Return(source, nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, dest.AccountID).Return(dest, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, source).Return(nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, dest).Return(nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Twice()

	result, err := suite.service.Transfer(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)

	// conservation: 500 + 0 == 300 + 200
	suite.True(source.Balance.Amount.Equal(decimal.RequireFromString("300")))
	suite.True(dest.Balance.Amount.Equal(decimal.RequireFromString("200")))

	suite.Equal(source.AccountID, result.Debit.AccountID)
	suite.Equal(dest.AccountID, result.Debit.CounterpartyAccountID)
	suite.Equal("k", result.Debit.IdempotencyKey)
	suite.Equal(dest.AccountID, result.Credit.AccountID)
	suite.Equal(source.AccountID, result.Credit.CounterpartyAccountID)
	suite.Equal("k-in", result.Credit.IdempotencyKey)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_SameAccountRejected() {
	ctx := context.Background()
	acc := fundedAccountFixture(suite.T(), "USD", "500")

	_, err := suite.service.Transfer(ctx, dto.CreateTransferRequest{
		SourceAccountID:      acc.AccountID,
		DestinationAccountID: acc.AccountID,
		Amount:               decimal.NewFromInt(10),
		CurrencyCode:         "USD",
		IdempotencyKey:       "k",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByID")
}

func (suite *TransferServiceTestSuite) TestTransfer_InsufficientFunds() {
	ctx := context.Background()
	source := fundedAccountFixture(suite.T(), "USD", "100")
	dest := newAccountFixture(suite.T(), "USD")
	req := suite.transferRequest(source, dest, "200")

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, source.AccountID, "k").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, source.AccountID).Return(source, nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, dest.AccountID).Return(dest, nil).Once()

	_, err := suite.service.Transfer(ctx, req)

	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)
	// neither aggregate was touched
	suite.True(source.Balance.Amount.Equal(decimal.RequireFromString("100")))
	suite.True(dest.Balance.IsZero())
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransferServiceTestSuite) TestTransfer_CurrencyMismatch() {
	ctx := context.Background()
	source := fundedAccountFixture(suite.T(), "EUR", "100")
	dest := newAccountFixture(suite.T(), "EUR")
	req := suite.transferRequest(source, dest, "50") // request is USD

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, source.AccountID, "k").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, source.AccountID).Return(source, nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, dest.AccountID).Return(dest, nil).Once()

	_, err := suite.service.Transfer(ctx, req)

	var mismatch *apperrors.CurrencyMismatchError
	suite.Require().ErrorAs(err, &mismatch)
	suite.Equal("EUR", mismatch.Expected)
	suite.Equal("USD", mismatch.Actual)
}

func (suite *TransferServiceTestSuite) TestTransfer_ReplaysStoredPair() {
	ctx := context.Background()
	debit := &domain.Transaction{TransactionID: "txn-debit", IdempotencyKey: "k"}
	credit := &domain.Transaction{TransactionID: "txn-credit", IdempotencyKey: "k-in"}

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, "src", "k").
		Return(debit, nil).Once()
	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, "dst", "k-in").
		Return(credit, nil).Once()

	result, err := suite.service.Transfer(ctx, dto.CreateTransferRequest{
		SourceAccountID:      "src",
		DestinationAccountID: "dst",
		Amount:               decimal.NewFromInt(10),
		CurrencyCode:         "USD",
		IdempotencyKey:       "k",
	})

	suite.Require().NoError(err)
	suite.Equal("txn-debit", result.Debit.TransactionID)
	suite.Equal("txn-credit", result.Credit.TransactionID)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByID")
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *TransferServiceTestSuite) TestTransfer_HalfPersistedPairSurfacesError() {
	ctx := context.Background()
	debit := &domain.Transaction{TransactionID: "txn-debit", IdempotencyKey: "k"}

	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, "src", "k").
		Return(debit, nil).Once()
	suite.mockRepo.On("FindTransactionByAccountAndKey", ctx, "dst", "k-in").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Transfer(ctx, dto.CreateTransferRequest{
		SourceAccountID:      "src",
		DestinationAccountID: "dst",
		Amount:               decimal.NewFromInt(10),
		CurrencyCode:         "USD",
		IdempotencyKey:       "k",
	})

	suite.Require().Error(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByID")
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultis/bankledger/internal/core/domain"
)

// MovementRequest is the body for deposits and withdrawals.
type MovementRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,currencycode"`
	IdempotencyKey string          `json:"idempotencyKey" binding:"required"`
	Description    string          `json:"description"`
}

// CreateTransferRequest is the body for a two-sided transfer.
type CreateTransferRequest struct {
	SourceAccountID      string          `json:"sourceAccountID" binding:"required"`
	DestinationAccountID string          `json:"destinationAccountID" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode         string          `json:"currencyCode" binding:"required,currencycode"`
	IdempotencyKey       string          `json:"idempotencyKey" binding:"required"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID         string                   `json:"transactionID"`
	Reference             string                   `json:"reference"`
	AccountID             string                   `json:"accountID"`
	Type                  domain.TransactionType   `json:"type"`
	Amount                decimal.Decimal          `json:"amount"`
	CurrencyCode          string                   `json:"currencyCode"`
	BalanceAfter          decimal.Decimal          `json:"balanceAfter"`
	Status                domain.TransactionStatus `json:"status"`
	Description           string                   `json:"description,omitempty"`
	IdempotencyKey        string                   `json:"idempotencyKey"`
	ProcessedAt           time.Time                `json:"processedAt"`
	CounterpartyAccountID string                   `json:"counterpartyAccountID,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to a response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		Reference:             txn.Reference,
		AccountID:             txn.AccountID,
		Type:                  txn.Type,
		Amount:                txn.Amount.Amount,
		CurrencyCode:          txn.Amount.CurrencyCode,
		BalanceAfter:          txn.BalanceAfter.Amount,
		Status:                txn.Status,
		Description:           txn.Description,
		IdempotencyKey:        txn.IdempotencyKey,
		ProcessedAt:           txn.ProcessedAt,
		CounterpartyAccountID: txn.CounterpartyAccountID,
	}
}

// ToListTransactionResponse converts ledger entries to response DTOs.
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// TransferResponse carries both resulting ledger entries of a transfer.
type TransferResponse struct {
	Debit  TransactionResponse `json:"debit"`
	Credit TransactionResponse `json:"credit"`
}

// ListTransactionsParams defines query parameters for listing ledger entries.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=50" binding:"min=1,max=200"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

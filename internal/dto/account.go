package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultis/bankledger/internal/core/domain"
)

// OpenAccountRequest defines the data needed to open a new account.
type OpenAccountRequest struct {
	HolderName   string             `json:"holderName" binding:"required"`
	AccountType  domain.AccountType `json:"accountType" binding:"required,oneof=CHECKING SAVINGS INVESTMENT"`
	CurrencyCode string             `json:"currencyCode" binding:"required,currencycode"`
}

// FreezeAccountRequest carries the reason an account is being frozen.
type FreezeAccountRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string               `json:"accountID"`
	AccountNumber string               `json:"accountNumber"`
	HolderName    string               `json:"holderName"`
	AccountType   domain.AccountType   `json:"accountType"`
	Status        domain.AccountStatus `json:"status"`
	Balance       decimal.Decimal      `json:"balance"`
	CurrencyCode  string               `json:"currencyCode"`
	OpenedAt      time.Time            `json:"openedAt"`
	ClosedAt      *time.Time           `json:"closedAt,omitempty"`
	FreezeReason  string               `json:"freezeReason,omitempty"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		AccountNumber: acc.AccountNumber,
		HolderName:    acc.HolderName,
		AccountType:   acc.Type,
		Status:        acc.Status,
		Balance:       acc.Balance.Amount,
		CurrencyCode:  acc.Balance.CurrencyCode,
		OpenedAt:      acc.OpenedAt,
		ClosedAt:      acc.ClosedAt,
		FreezeReason:  acc.FreezeReason,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

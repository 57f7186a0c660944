package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaultis/bankledger/internal/core/domain"
	portssvc "github.com/vaultis/bankledger/internal/core/ports/services"
	"github.com/vaultis/bankledger/internal/dto"
	"github.com/vaultis/bankledger/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts and their ledgers.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/transactions", h.listTransactions)
		accounts.POST("/:accountID/deposits", h.deposit)
		accounts.POST("/:accountID/withdrawals", h.withdraw)
		accounts.POST("/:accountID/freeze", h.freeze)
		accounts.POST("/:accountID/unfreeze", h.unfreeze)
		accounts.POST("/:accountID/close", h.close)
	}
}

// openAccount creates a new active account with a zero balance.
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.OpenAccount(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	logger.Info("Account opened", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// listTransactions returns the ordered ledger of one account.
func (h *accountHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.accountService.ListTransactions(c.Request.Context(), c.Param("accountID"), params)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToListTransactionResponse(txns)})
}

func (h *accountHandler) deposit(c *gin.Context) {
	h.applyMovement(c, h.accountService.Deposit)
}

func (h *accountHandler) withdraw(c *gin.Context) {
	h.applyMovement(c, h.accountService.Withdraw)
}

func (h *accountHandler) applyMovement(c *gin.Context, movement func(ctx context.Context, accountID string, req dto.MovementRequest) (*domain.Transaction, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for movement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := movement(c.Request.Context(), c.Param("accountID"), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *accountHandler) freeze(c *gin.Context) {
	var req dto.FreezeAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.FreezeAccount(c.Request.Context(), c.Param("accountID"), req.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) unfreeze(c *gin.Context) {
	account, err := h.accountService.UnfreezeAccount(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) close(c *gin.Context) {
	account, err := h.accountService.CloseAccount(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

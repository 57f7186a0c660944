package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/vaultis/bankledger/internal/core/ports/services"
	"github.com/vaultis/bankledger/internal/dto"
	"github.com/vaultis/bankledger/internal/middleware"
)

// transferHandler handles HTTP requests for two-sided transfers.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{transferService: ts}
}

// registerTransferRoutes registers routes related to transfers.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)
	rg.POST("/transfers", h.createTransfer)
}

// createTransfer moves funds between two accounts. Both resulting ledger
// entries come back so the caller can see the debit and the credit half.
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.transferService.Transfer(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	logger.Info("Transfer created",
		slog.String("source_account_id", req.SourceAccountID),
		slog.String("destination_account_id", req.DestinationAccountID))
	c.JSON(http.StatusCreated, dto.TransferResponse{
		Debit:  dto.ToTransactionResponse(&result.Debit),
		Credit: dto.ToTransactionResponse(&result.Credit),
	})
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaultis/bankledger/internal/apperrors"
	"github.com/vaultis/bankledger/internal/middleware"
)

// respondDomainError translates the business-rule error taxonomy into HTTP
// responses. Business conflicts (frozen, closed, duplicate key, stale write)
// map to 409; rule violations the caller can fix map to 422; bad input to
// 400; unknown resources to 404. Anything else is a 500 with no detail leaked.
func respondDomainError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var (
		insufficient *apperrors.InsufficientFundsError
		mismatch     *apperrors.CurrencyMismatchError
		frozen       *apperrors.AccountFrozenError
		closed       *apperrors.AccountClosedError
		duplicateKey *apperrors.DuplicateIdempotencyKeyError
		invariant    *apperrors.InvariantViolationError
	)

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     insufficient.Error(),
			"available": insufficient.Available,
			"requested": insufficient.Requested,
			"currency":  insufficient.Currency,
		})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    mismatch.Error(),
			"expected": mismatch.Expected,
			"actual":   mismatch.Actual,
		})
	case errors.As(err, &frozen):
		c.JSON(http.StatusConflict, gin.H{"error": frozen.Error()})
	case errors.As(err, &closed):
		c.JSON(http.StatusConflict, gin.H{"error": closed.Error()})
	case errors.As(err, &duplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": duplicateKey.Error()})
	case errors.As(err, &invariant):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invariant.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Unhandled error in handler", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

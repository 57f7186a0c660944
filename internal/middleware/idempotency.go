package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultis/bankledger/internal/apperrors"
	portsrepo "github.com/vaultis/bankledger/internal/core/ports/repositories"
)

// bodyCaptureWriter duplicates everything written to the response so the
// middleware can store it for later replay.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency is the request-level idempotency cache. When a POST arrives with
// an Idempotency-Key header that has been seen before, the stored response is
// replayed verbatim and the handler never runs. On a miss the response is
// captured and stored after the handler completes.
//
// This cache replays prior successes; the per-account guard inside the
// aggregate hard-fails on a reused key instead. The two behaviors are
// deliberate complements: the guard assumes this check already ran.
func Idempotency(repo portsrepo.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context())

		stored, err := repo.FindResponse(c.Request.Context(), key)
		if err == nil {
			logger.Info("Idempotency cache hit, replaying stored response",
				slog.String("idempotency_key", key))
			c.Header("X-Idempotency-Hit", "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Idempotency cache lookup failed",
				slog.String("idempotency_key", key), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Idempotency check failed"})
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		// Server-side failures are not cached so the client can retry them.
		status := writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		saveErr := repo.SaveResponse(c.Request.Context(), portsrepo.StoredResponse{
			Key:         key,
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			CreatedAt:   time.Now().UTC(),
		})
		if saveErr != nil {
			logger.Error("Failed to save idempotency response",
				slog.String("idempotency_key", key), slog.String("error", saveErr.Error()))
		}
	}
}

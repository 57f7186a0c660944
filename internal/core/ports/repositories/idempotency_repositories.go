package repositories

import (
	"context"
	"time"
)

// StoredResponse is a captured HTTP response kept for request-level replay.
type StoredResponse struct {
	Key         string
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// IdempotencyRepository backs the request-level idempotency cache: a hit means
// the prior successful response is replayed verbatim instead of re-invoking
// the handler. This intentionally differs from the in-aggregate guard, which
// hard-fails on a reused key.
type IdempotencyRepository interface {
	// FindResponse returns the stored response for key, or apperrors.ErrNotFound.
	FindResponse(ctx context.Context, key string) (*StoredResponse, error)

	// SaveResponse stores a response for key. Saving an already-stored key is a
	// no-op (first writer wins).
	SaveResponse(ctx context.Context, response StoredResponse) error
}

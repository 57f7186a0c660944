package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultis/bankledger/internal/apperrors"
	portsrepo "github.com/vaultis/bankledger/internal/core/ports/repositories"
)

// IdempotencyRepository stores captured HTTP responses for request-level
// replay, keyed by the client-supplied Idempotency-Key header.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates the pgx-backed idempotency cache.
func NewIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

var _ portsrepo.IdempotencyRepository = (*IdempotencyRepository)(nil)

func (r *IdempotencyRepository) FindResponse(ctx context.Context, key string) (*portsrepo.StoredResponse, error) {
	query := `
		SELECT key_id, response_status, content_type, response_body, created_at
		FROM idempotency_keys
		WHERE key_id = $1;
	`
	var stored portsrepo.StoredResponse
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&stored.Key,
		&stored.StatusCode,
		&stored.ContentType,
		&stored.Body,
		&stored.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("idempotency key not seen: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load idempotency key %q: %w", key, err)
	}
	return &stored, nil
}

// SaveResponse records a response for key. First writer wins; a concurrent
// duplicate insert is silently dropped.
func (r *IdempotencyRepository) SaveResponse(ctx context.Context, response portsrepo.StoredResponse) error {
	query := `
		INSERT INTO idempotency_keys (key_id, response_status, content_type, response_body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key_id) DO NOTHING;
	`
	_, err := r.pool.Exec(ctx, query,
		response.Key,
		response.StatusCode,
		response.ContentType,
		response.Body,
		response.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save idempotency key %q: %w", response.Key, err)
	}
	return nil
}

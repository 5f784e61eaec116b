package repository

import (
	"context"

	"github.com/sangkips/trademate-console/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an unexpired idempotency key by its key string and session ID
	GetByKey(ctx context.Context, key, sessionID string) (*entity.IdempotencyKey, error)
	// Claim inserts a pending key. It reports false when the session already holds the key.
	Claim(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Save records the response for a claimed key
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a claim whose request never produced a response
	Release(ctx context.Context, key, sessionID string) error
	// DeleteExpired removes expired idempotency keys (for cleanup)
	DeleteExpired(ctx context.Context) error
}

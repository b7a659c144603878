package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// IdempotencyStore remembers which order a client-supplied idempotency key created.
type IdempotencyStore interface {
	// Reserve binds key to orderID if the key is new and reports true.
	// If the key is already bound it returns the existing order id and false.
	Reserve(ctx context.Context, key string, orderID kernel.UUID) (kernel.UUID, bool, error)

	// Release forgets key so the client can retry after a failure that
	// persisted nothing.
	Release(ctx context.Context, key string) error
}

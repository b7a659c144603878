// Package ports defines the contracts between the fulfillment core and its
// adapters: repositories for the order, driver and delivery assignment
// aggregates, and the outbound collaborators the orchestrator calls.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order with its restaurant sub-orders and line items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status, payment status, driver and timestamps of an existing order.
	// Line items and totals are written once by Add and never change.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its identifier.
	// Returns *errs.ObjectNotFoundError when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get with the order row locked until the transaction ends.
	// Handlers that check a transition and then write it read through this
	// method, so concurrent writers of one order run one after another.
	// Locks are taken order first, then assignment, then driver.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllReadyWithoutAssignment returns up to limit orders in ReadyForPickup
	// that have no delivery assignment yet, oldest first. The dispatch re-poll
	// job uses it to retry orders that found no driver.
	GetAllReadyWithoutAssignment(ctx context.Context, limit int) ([]*order.Order, error)
}

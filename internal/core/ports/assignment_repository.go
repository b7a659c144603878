package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for delivery assignments.
//
// Claim and Release are the only writes that touch driver availability. They
// are conditional updates evaluated by the database, so two drivers accepting
// the same offer in parallel cannot both succeed even when each of them read
// a pending assignment before writing.
type AssignmentRepository interface {
	// Add stores a new pending assignment. There is at most one assignment per
	// order; a second one is rejected with delivery.ErrAlreadyDispatched.
	Add(ctx context.Context, aggregate *delivery.Assignment) error

	// Update persists a status change that does not involve driver availability,
	// such as picked up. The write only matches an open row whose committed
	// driver is still the one the aggregate was read with; a row that moved on
	// meanwhile yields *errs.IllegalTransitionError.
	Update(ctx context.Context, aggregate *delivery.Assignment) error

	// Get retrieves the assignment of an order.
	// Returns *errs.ObjectNotFoundError when the order was never dispatched.
	Get(ctx context.Context, orderID kernel.UUID) (*delivery.Assignment, error)

	// Claim commits the aggregate's committed driver with two conditional writes:
	//   - the assignment row only where it is still pending, uncommitted and the
	//     driver is among its candidates
	//   - the driver row only where it is still available
	//
	// Returns delivery.ErrAssignmentAlreadyClaimed or delivery.ErrDriverUnavailable
	// when the corresponding write matched no row. The caller must roll the
	// transaction back on any error.
	Claim(ctx context.Context, aggregate *delivery.Assignment) error

	// Release persists a closed assignment (delivered or cancelled) and marks
	// its committed driver, if any, available again.
	Release(ctx context.Context, aggregate *delivery.Assignment) error

	// HasActiveForDriver reports whether the driver is committed to an
	// assignment that is not yet delivered or cancelled.
	HasActiveForDriver(ctx context.Context, driverID kernel.UUID) (bool, error)
}

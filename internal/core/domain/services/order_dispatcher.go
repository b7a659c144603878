package services

import (
	"errors"
	"fmt"
	"math"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// ErrOrderNotReadyForPickup is returned when dispatch is attempted for an order
// that the restaurant has not marked ready.
var ErrOrderNotReadyForPickup = errors.New("order is not ready for pickup")

// OrderDispatcher is a domain service that offers an order's delivery to the
// drivers nearest to its pickup point.
//
// Business rules:
//   - Only orders in ReadyForPickup are dispatched
//   - Only available drivers with a reported location are considered
//   - Distance is haversine meters rounded to whole meters
//   - Every driver at the minimum rounded distance becomes a candidate, in input order
//   - No candidates means delivery.ErrNoDriverAvailable, a retryable business condition
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher()
//	assignment, err := dispatcher.Dispatch(o, pickup, dropoff, drivers)
//	if errors.Is(err, delivery.ErrNoDriverAvailable) {
//	    // try again on the next dispatch run
//	    return
//	}
type OrderDispatcher struct{}

// NewOrderDispatcher creates a new OrderDispatcher instance.
func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// Dispatch selects the candidates for o and opens a pending assignment to them.
//
// Parameters:
//   - o: The order to dispatch (must be ReadyForPickup)
//   - pickup: Restaurant address with its geocoded location (required)
//   - dropoff: Customer address, location optional
//   - drivers: The current pool of drivers
//
// Returns:
//   - *delivery.Assignment: A pending assignment offered to every tie-nearest driver
//   - error: delivery.ErrNoDriverAvailable for an empty candidate set, or validation errors
func (d OrderDispatcher) Dispatch(
	o *order.Order,
	pickup delivery.Stop,
	dropoff delivery.Stop,
	drivers []*driver.Driver,
) (*delivery.Assignment, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Status() != order.ReadyForPickup {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotReadyForPickup, o.ID(), o.Status())
	}
	if pickup.Location == nil {
		return nil, errs.NewValueIsRequiredError("pickupLocation")
	}

	candidates, err := d.SelectCandidates(*pickup.Location, drivers)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID())
	}

	return delivery.NewAssignment(o.ID(), ids, pickup, dropoff)
}

// SelectCandidates returns every available driver whose rounded distance to
// pickup equals the minimum over the pool. Drivers that are busy or never
// reported a location are skipped. An empty result is not an error.
//
// Selection criteria:
//   - Validates driver construction
//   - Compares whole-meter haversine distances
//   - Keeps all ties, preserving input order
func (d OrderDispatcher) SelectCandidates(pickup kernel.Location, drivers []*driver.Driver) ([]*driver.Driver, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	var (
		candidates = make([]*driver.Driver, 0)
		best       = int64(math.MaxInt64)
	)

	for _, drv := range drivers {
		if err := drv.Validate(); err != nil {
			return nil, err
		}
		if !drv.IsAvailable() {
			continue
		}
		loc, ok := drv.Location()
		if !ok {
			continue
		}

		dist, err := loc.RoundedDistanceTo(pickup)
		if err != nil {
			return nil, err
		}

		switch {
		case dist < best:
			best = dist
			candidates = append(candidates[:0], drv)
		case dist == best:
			candidates = append(candidates, drv)
		}
	}

	return candidates, nil
}

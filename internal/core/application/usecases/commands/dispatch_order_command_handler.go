package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// DispatchOrderCommandHandler opens the delivery offer of a ready order.
//
// The pickup point is the first restaurant of the order, geocoded from its
// catalog address. The drop-off address is geocoded best-effort. Both lookups
// happen before the transaction starts. Inside the transaction the handler
// reads the available drivers, selects every tie-nearest one and stores a
// pending assignment. Candidates are notified after commit.
//
// Example:
//
//	asg, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, delivery.ErrNoDriverAvailable):
//	    // the re-poll job will try again
//	case err != nil:
//	    return err
//	}
type DispatchOrderCommandHandler struct {
	uowFactory    UoWFactory
	collaborators Collaborators
}

// NewDispatchOrderCommandHandler requires Catalog and Geocoder in collaborators.
func NewDispatchOrderCommandHandler(uowFactory UoWFactory, collaborators Collaborators) DispatchOrderCommandHandler {
	return DispatchOrderCommandHandler{
		uowFactory:    uowFactory,
		collaborators: collaborators,
	}
}

// Handle dispatches the order. An order that already has an assignment gets
// that assignment back unchanged.
func (h DispatchOrderCommandHandler) Handle(ctx context.Context, cmd DispatchOrderCommand) (*delivery.Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if o.Status() != order.ReadyForPickup {
		return nil, fmt.Errorf("%w: order %s is %s", services.ErrOrderNotReadyForPickup, o.ID(), o.Status())
	}

	pickup, err := h.pickupStop(ctx, o)
	if err != nil {
		return nil, err
	}
	dropoff := h.dropoffStop(ctx, o)

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	// re-read under the row lock; the order may have been cancelled meanwhile
	// and a concurrent dispatch of it waits here until this one commits
	o, err = uow.OrderRepository().GetForUpdate(ctx, o.ID())
	if err != nil {
		return nil, err
	}

	assignmentRepo := uow.AssignmentRepository()
	existing, err := assignmentRepo.Get(ctx, o.ID())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	drivers, err := uow.DriverRepository().GetAllAvailable(ctx)
	if err != nil {
		return nil, err
	}

	assignment, err := services.NewOrderDispatcher().Dispatch(o, pickup, dropoff, drivers)
	if err != nil {
		return nil, err
	}

	err = assignmentRepo.Add(ctx, assignment)
	if errors.Is(err, delivery.ErrAlreadyDispatched) {
		return assignmentRepo.Get(ctx, o.ID())
	}
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	for _, candidate := range assignment.Candidates() {
		h.collaborators.notify(ctx, o, ports.Notification{
			Channel:   ports.AudienceDriver,
			Recipient: candidate.String(),
			Message:   fmt.Sprintf("New delivery: order %s, pickup at %s", o.ID(), pickup.Address),
		})
	}

	return assignment, nil
}

func (h DispatchOrderCommandHandler) pickupStop(ctx context.Context, o *order.Order) (delivery.Stop, error) {
	restaurant, err := h.collaborators.Catalog.GetRestaurant(ctx, o.PickupRestaurantID())
	if err != nil {
		return delivery.Stop{}, err
	}

	location, err := h.collaborators.Geocoder.Geocode(ctx, restaurant.Address)
	if err != nil {
		return delivery.Stop{}, fmt.Errorf("geocoding pickup of order %s: %w", o.ID(), err)
	}

	return delivery.Stop{Address: restaurant.Address, Location: &location}, nil
}

// dropoffStop never fails; an address that cannot be geocoded is kept without coordinates.
func (h DispatchOrderCommandHandler) dropoffStop(ctx context.Context, o *order.Order) delivery.Stop {
	stop := delivery.Stop{Address: o.Delivery().Address}

	location, err := h.collaborators.Geocoder.Geocode(ctx, stop.Address)
	if err != nil {
		h.collaborators.logger().WarnContext(ctx, "geocoding drop-off failed",
			"order_id", o.ID().String(), "error", err)
		return stop
	}

	stop.Location = &location
	return stop
}

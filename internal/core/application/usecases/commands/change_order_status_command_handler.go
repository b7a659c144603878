package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// OrderDispatcher starts the driver search for a ready order.
// DispatchOrderCommandHandler satisfies it.
type OrderDispatcher interface {
	Handle(ctx context.Context, cmd DispatchOrderCommand) (*delivery.Assignment, error)
}

// ChangeOrderStatusCommandHandler applies an actor's status change.
//
// Delivered and cancelled close the order's delivery assignment in the same
// transaction and make its driver available again. After commit the handler
// publishes the change, notifies the parties and, for ready_for_pickup,
// starts dispatch. A failed dispatch never fails the status change; the
// re-poll job picks the order up later.
type ChangeOrderStatusCommandHandler struct {
	uowFactory    UoWFactory
	dispatcher    OrderDispatcher
	collaborators Collaborators
}

func NewChangeOrderStatusCommandHandler(
	uowFactory UoWFactory,
	dispatcher OrderDispatcher,
	collaborators Collaborators,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory:    uowFactory,
		dispatcher:    dispatcher,
		collaborators: collaborators,
	}
}

// Handle returns the updated order.
//
// Returns:
//   - *errs.IllegalTransitionError if the target is not a direct successor
//   - *errs.ForbiddenError if the actor may not take the edge
//   - *errs.ObjectNotFoundError if the order does not exist
func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	// the row lock makes the check below and the write one step for
	// concurrent changes of the same order
	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	from := o.Status()
	releasedDriver := o.DriverID()
	if err = o.Transition(cmd.Actor(), cmd.Target()); err != nil {
		return nil, err
	}

	if o.Status() == order.Delivered || o.Status() == order.Cancelled {
		if err = h.closeAssignment(ctx, uow.AssignmentRepository(), o); err != nil {
			return nil, err
		}
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.collaborators.publishStatusChanged(ctx, o, from, cmd.Actor())
	h.afterCommit(ctx, o, releasedDriver)

	return o, nil
}

// closeAssignment completes or cancels the open assignment of o and frees its driver.
func (h ChangeOrderStatusCommandHandler) closeAssignment(
	ctx context.Context,
	repo ports.AssignmentRepository,
	o *order.Order,
) error {
	assignment, err := repo.Get(ctx, o.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if assignment.Status().IsClosed() {
		return nil
	}

	if o.Status() == order.Delivered {
		err = assignment.Complete()
	} else {
		err = assignment.Cancel()
	}
	if err != nil {
		return err
	}

	return repo.Release(ctx, assignment)
}

func (h ChangeOrderStatusCommandHandler) afterCommit(ctx context.Context, o *order.Order, releasedDriver *kernel.UUID) {
	status := o.Status().String()
	h.collaborators.notifyCustomer(ctx, o, fmt.Sprintf("Your order %s is %s", o.ID(), status))

	switch o.Status() {
	case order.ReadyForPickup:
		h.dispatch(ctx, o)
	case order.Delivered:
		h.collaborators.notifyRestaurants(ctx, o, fmt.Sprintf("Order %s was delivered, total %s settled",
			o.ID(), o.Totals().Total()))
	case order.Cancelled:
		h.collaborators.notifyRestaurants(ctx, o, fmt.Sprintf("Order %s was cancelled", o.ID()))
		if releasedDriver != nil {
			h.collaborators.notify(ctx, o, ports.Notification{
				Channel:   ports.AudienceDriver,
				Recipient: releasedDriver.String(),
				Message:   fmt.Sprintf("Order %s was cancelled, you are available again", o.ID()),
			})
		}
	}
}

func (h ChangeOrderStatusCommandHandler) dispatch(ctx context.Context, o *order.Order) {
	log := h.collaborators.logger().With("order_id", o.ID().String())

	cmd, err := NewDispatchOrderCommand(o.ID())
	if err != nil {
		log.ErrorContext(ctx, "building dispatch command failed", "error", err)
		return
	}

	assignment, err := h.dispatcher.Handle(ctx, cmd)
	switch {
	case errors.Is(err, delivery.ErrNoDriverAvailable):
		log.InfoContext(ctx, "no driver available, dispatch deferred")
	case err != nil:
		log.WarnContext(ctx, "dispatch failed, deferred to re-poll", "error", err)
	default:
		log.InfoContext(ctx, "delivery offered", "candidates", len(assignment.Candidates()))
	}
}

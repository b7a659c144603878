package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// AcceptDeliveryCommandHandler runs the claim of a pending delivery offer.
//
// Within one transaction:
//  1. The order row is locked, so a concurrent cancel either finishes first
//     or waits until the claim is committed
//  2. Accept on the aggregate rejects closed offers, offers already committed
//     and drivers that are not candidates
//  3. AssignmentRepository.Claim performs the conditional writes on the
//     assignment and the driver rows; a concurrent winner makes it fail with
//     delivery.ErrAssignmentAlreadyClaimed
//  4. The order moves ready_for_pickup -> on_the_way with the driver id
//
// Any failure rolls everything back, so a losing driver's availability and
// the order are untouched. After commit the other candidates learn the job
// is gone and the customer is told the order is on the way (best-effort).
//
// Example:
//
//	asg, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, delivery.ErrAssignmentAlreadyClaimed) {
//	    // 409: another driver was faster
//	}
type AcceptDeliveryCommandHandler struct {
	uowFactory    UoWFactory
	collaborators Collaborators
}

func NewAcceptDeliveryCommandHandler(uowFactory UoWFactory, collaborators Collaborators) AcceptDeliveryCommandHandler {
	return AcceptDeliveryCommandHandler{
		uowFactory:    uowFactory,
		collaborators: collaborators,
	}
}

// Handle returns the accepted assignment.
func (h AcceptDeliveryCommandHandler) Handle(ctx context.Context, cmd AcceptDeliveryCommand) (*delivery.Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	driverID := cmd.Driver().ID()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	assignmentRepo := uow.AssignmentRepository()
	assignment, err := assignmentRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = assignment.Accept(driverID); err != nil {
		return nil, err
	}

	if err = assignmentRepo.Claim(ctx, assignment); err != nil {
		return nil, err
	}

	from := o.Status()
	if err = o.StartDelivery(order.SystemActor, driverID); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	for _, candidate := range assignment.Candidates() {
		if candidate.IsEqual(driverID) {
			continue
		}
		h.collaborators.notify(ctx, o, ports.Notification{
			Channel:   ports.AudienceDriver,
			Recipient: candidate.String(),
			Message:   fmt.Sprintf("Order %s was taken by another driver", o.ID()),
		})
	}
	h.collaborators.notifyCustomer(ctx, o, fmt.Sprintf("Your order %s is on the way", o.ID()))
	h.collaborators.publishStatusChanged(ctx, o, from, order.SystemActor)

	return assignment, nil
}

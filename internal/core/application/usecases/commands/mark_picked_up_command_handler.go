package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
)

// MarkPickedUpCommandHandler moves an accepted assignment to picked_up.
// The order status does not change; it is already on_the_way.
type MarkPickedUpCommandHandler struct {
	uowFactory UoWFactory
}

func NewMarkPickedUpCommandHandler(uowFactory UoWFactory) MarkPickedUpCommandHandler {
	return MarkPickedUpCommandHandler{uowFactory: uowFactory}
}

func (h MarkPickedUpCommandHandler) Handle(ctx context.Context, cmd MarkPickedUpCommand) (*delivery.Assignment, error) {
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

	repo := uow.AssignmentRepository()
	assignment, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = assignment.MarkPickedUp(cmd.Driver().ID()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, assignment); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return assignment, nil
}

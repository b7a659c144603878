package commands

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/domain/model/delivery"
)

// ErrNothingToRedispatch is returned when no ready order is waiting for a driver.
var ErrNothingToRedispatch = errors.New("no orders waiting for dispatch")

// RedispatchOrdersCommandHandler feeds waiting orders back into dispatch.
// Orders are handled one by one so that one failure does not block the rest.
type RedispatchOrdersCommandHandler struct {
	uowFactory UoWFactory
	dispatcher OrderDispatcher
	logger     *slog.Logger
}

func NewRedispatchOrdersCommandHandler(
	uowFactory UoWFactory,
	dispatcher OrderDispatcher,
	logger *slog.Logger,
) RedispatchOrdersCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return RedispatchOrdersCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle returns how many orders received an assignment.
// When none did, the error is ErrNothingToRedispatch or
// delivery.ErrNoDriverAvailable; both are expected and not failures.
func (h RedispatchOrdersCommandHandler) Handle(ctx context.Context, cmd RedispatchOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	orders, err := h.uowFactory.Create().OrderRepository().GetAllReadyWithoutAssignment(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, ErrNothingToRedispatch
	}

	dispatched := 0
	for _, o := range orders {
		dispatchCmd, cmdErr := NewDispatchOrderCommand(o.ID())
		if cmdErr != nil {
			return dispatched, cmdErr
		}

		_, err = h.dispatcher.Handle(ctx, dispatchCmd)
		switch {
		case errors.Is(err, delivery.ErrNoDriverAvailable):
			// later orders see the same empty pool
			if dispatched == 0 {
				return 0, delivery.ErrNoDriverAvailable
			}
			return dispatched, nil
		case err != nil:
			h.logger.WarnContext(ctx, "redispatch failed", "order_id", o.ID().String(), "error", err)
		default:
			dispatched++
		}
	}

	return dispatched, nil
}

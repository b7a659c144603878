package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrMarkPickedUpCommandIsNotConstructed = errors.New(
	"MarkPickedUpCommand must be created via NewMarkPickedUpCommand constructor",
)

// MarkPickedUpCommand is the committed driver reporting that the food was collected.
type MarkPickedUpCommand struct {
	orderID kernel.UUID
	driver  order.Actor

	guard guard.ConstructorGuard
}

func NewMarkPickedUpCommand(orderID kernel.UUID, driver order.Actor) (MarkPickedUpCommand, error) {
	if err := orderID.Validate(); err != nil {
		return MarkPickedUpCommand{}, err
	}
	if driver.Role() != order.RoleDriver {
		return MarkPickedUpCommand{}, errs.NewForbiddenError(driver.String(), "pick up a delivery")
	}

	return MarkPickedUpCommand{
		orderID: orderID,
		driver:  driver,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c MarkPickedUpCommand) Validate() error {
	return c.guard.Validate(ErrMarkPickedUpCommandIsNotConstructed)
}

func (c MarkPickedUpCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c MarkPickedUpCommand) Driver() order.Actor {
	return c.driver
}

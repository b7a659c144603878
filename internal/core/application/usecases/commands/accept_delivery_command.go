package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAcceptDeliveryCommandIsNotConstructed = errors.New(
	"AcceptDeliveryCommand must be created via NewAcceptDeliveryCommand constructor",
)

// AcceptDeliveryCommand is a candidate driver claiming an order's delivery.
type AcceptDeliveryCommand struct {
	orderID kernel.UUID
	driver  order.Actor

	guard guard.ConstructorGuard
}

// NewAcceptDeliveryCommand requires a driver actor; the driver id is the actor id.
func NewAcceptDeliveryCommand(orderID kernel.UUID, driver order.Actor) (AcceptDeliveryCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AcceptDeliveryCommand{}, err
	}
	if driver.Role() != order.RoleDriver {
		return AcceptDeliveryCommand{}, errs.NewForbiddenError(driver.String(), "accept a delivery")
	}

	return AcceptDeliveryCommand{
		orderID: orderID,
		driver:  driver,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AcceptDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAcceptDeliveryCommandIsNotConstructed)
}

func (c AcceptDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AcceptDeliveryCommand) Driver() order.Actor {
	return c.driver
}

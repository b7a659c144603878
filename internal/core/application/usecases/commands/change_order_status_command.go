package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand is an actor asking to move an order to a new status.
//
// Example:
//
//	cmd, err := NewChangeOrderStatusCommand(orderID, restaurantActor, order.Preparing)
type ChangeOrderStatusCommand struct {
	orderID kernel.UUID
	actor   order.Actor
	target  order.Status

	guard guard.ConstructorGuard
}

func NewChangeOrderStatusCommand(orderID kernel.UUID, actor order.Actor, target order.Status) (ChangeOrderStatusCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		actor.Role().Validate(),
		target.Validate(),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return ChangeOrderStatusCommand{
		orderID: orderID,
		actor:   actor,
		target:  target,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ChangeOrderStatusCommand) Actor() order.Actor {
	return c.actor
}

func (c ChangeOrderStatusCommand) Target() order.Status {
	return c.target
}

package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery reads the delivery assignment of an order. Candidate
// drivers may read an open offer so they can decide whether to accept it.
type GetDeliveryQuery struct {
	orderID kernel.UUID
	actor   order.Actor

	guard guard.ConstructorGuard
}

func NewGetDeliveryQuery(orderID kernel.UUID, actor order.Actor) (GetDeliveryQuery, error) {
	if err := errors.Join(orderID.Validate(), actor.Role().Validate()); err != nil {
		return GetDeliveryQuery{}, err
	}

	return GetDeliveryQuery{
		orderID: orderID,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetDeliveryQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetDeliveryQuery) Actor() order.Actor {
	return q.actor
}

func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

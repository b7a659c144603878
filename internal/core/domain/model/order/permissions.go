package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

type edge struct {
	from Status
	to   Status
}

// transitionRules is the single source of both the legal lifecycle edges and
// the roles allowed to take them. Non-system roles must additionally own the
// order (see owns).
var transitionRules = map[edge][]Role{
	{Pending, Confirmed}:        {RoleSystem},
	{Confirmed, Preparing}:      {RoleRestaurant},
	{Preparing, ReadyForPickup}: {RoleRestaurant},
	{ReadyForPickup, OnTheWay}:  {RoleSystem},
	{OnTheWay, Delivered}:       {RoleDriver},

	{Pending, Cancelled}:        {RoleCustomer, RoleAdmin, RoleSystem},
	{Confirmed, Cancelled}:      {RoleCustomer, RoleRestaurant, RoleAdmin, RoleSystem},
	{Preparing, Cancelled}:      {RoleRestaurant, RoleAdmin, RoleSystem},
	{ReadyForPickup, Cancelled}: {RoleRestaurant, RoleAdmin, RoleSystem},
	{OnTheWay, Cancelled}:       {RoleAdmin, RoleSystem},
}

// authorize checks that actor may move o along from -> to. The edge itself
// must already be known to be legal.
func (o *Order) authorize(actor Actor, from, to Status) error {
	action := fmt.Sprintf("move order from %s to %s", from, to)

	for _, role := range transitionRules[edge{from: from, to: to}] {
		if role != actor.role {
			continue
		}
		if !o.owns(actor) {
			return errs.NewForbiddenErrorWithCause(actor.String(), action,
				fmt.Errorf("%s is not a party to order %s", actor.role, o.id))
		}
		return nil
	}

	return errs.NewForbiddenError(actor.String(), action)
}

// owns reports whether actor is a party to the order.
func (o *Order) owns(actor Actor) bool {
	switch actor.role {
	case RoleSystem, RoleAdmin:
		return true
	case RoleCustomer:
		return o.customerID.IsEqual(actor.id)
	case RoleRestaurant:
		return o.HasRestaurant(actor.id)
	case RoleDriver:
		return o.driverID != nil && o.driverID.IsEqual(actor.id)
	default:
		return false
	}
}

// CanView reports whether actor may read the order.
func (o *Order) CanView(actor Actor) bool {
	return o.owns(actor)
}

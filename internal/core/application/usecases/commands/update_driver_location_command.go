package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateDriverLocationCommandIsNotConstructed = errors.New(
	"UpdateDriverLocationCommand must be created via NewUpdateDriverLocationCommand constructor",
)

// UpdateDriverLocationCommand is a driver reporting their position.
type UpdateDriverLocationCommand struct {
	driverID kernel.UUID
	location kernel.Location

	guard guard.ConstructorGuard
}

// NewUpdateDriverLocationCommand accepts reports only from the driver themself.
func NewUpdateDriverLocationCommand(driverID kernel.UUID, actor order.Actor, lat, lng float64) (UpdateDriverLocationCommand, error) {
	if err := driverID.Validate(); err != nil {
		return UpdateDriverLocationCommand{}, err
	}
	if actor.Role() != order.RoleDriver || !actor.ID().IsEqual(driverID) {
		return UpdateDriverLocationCommand{}, errs.NewForbiddenError(actor.String(),
			"report the location of driver "+driverID.String())
	}

	location, err := kernel.NewLocation(lat, lng)
	if err != nil {
		return UpdateDriverLocationCommand{}, err
	}

	return UpdateDriverLocationCommand{
		driverID: driverID,
		location: location,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverLocationCommandIsNotConstructed)
}

func (c UpdateDriverLocationCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c UpdateDriverLocationCommand) Location() kernel.Location {
	return c.location
}

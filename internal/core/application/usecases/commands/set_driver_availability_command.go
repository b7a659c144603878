package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrSetDriverAvailabilityCommandIsNotConstructed = errors.New(
	"SetDriverAvailabilityCommand must be created via NewSetDriverAvailabilityCommand constructor",
)

// SetDriverAvailabilityCommand is a driver going on or off shift. Admins may
// act on any driver.
type SetDriverAvailabilityCommand struct {
	driverID  kernel.UUID
	available bool

	guard guard.ConstructorGuard
}

func NewSetDriverAvailabilityCommand(driverID kernel.UUID, actor order.Actor, available bool) (SetDriverAvailabilityCommand, error) {
	if err := driverID.Validate(); err != nil {
		return SetDriverAvailabilityCommand{}, err
	}

	isSelf := actor.Role() == order.RoleDriver && actor.ID().IsEqual(driverID)
	if !isSelf && actor.Role() != order.RoleAdmin {
		return SetDriverAvailabilityCommand{}, errs.NewForbiddenError(actor.String(),
			"change availability of driver "+driverID.String())
	}

	return SetDriverAvailabilityCommand{
		driverID:  driverID,
		available: available,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SetDriverAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetDriverAvailabilityCommandIsNotConstructed)
}

func (c SetDriverAvailabilityCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c SetDriverAvailabilityCommand) Available() bool {
	return c.available
}

package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRegisterDriverCommandIsNotConstructed = errors.New(
	"RegisterDriverCommand must be created via NewRegisterDriverCommand constructor",
)

// RegisterDriverCommand is a driver creating their delivery profile. The
// optional address is geocoded to seed the driver's first location.
type RegisterDriverCommand struct { //nolint:recvcheck //using for validation
	actor   order.Actor
	name    string
	phone   string
	email   string
	vehicle driver.Vehicle
	address string

	guard guard.ConstructorGuard
}

func NewRegisterDriverCommand(
	actor order.Actor,
	name, phone, email string,
	vehicle driver.Vehicle,
	address string,
) (RegisterDriverCommand, error) {
	cmd := RegisterDriverCommand{
		phone:   strings.TrimSpace(phone),
		email:   strings.TrimSpace(email),
		address: strings.TrimSpace(address),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setActor(actor),
		cmd.setName(name),
		cmd.setVehicle(vehicle),
	); err != nil {
		return RegisterDriverCommand{}, err
	}

	return cmd, nil
}

func (c RegisterDriverCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDriverCommandIsNotConstructed)
}

func (c RegisterDriverCommand) Actor() order.Actor {
	return c.actor
}

func (c RegisterDriverCommand) Name() string {
	return c.name
}

func (c RegisterDriverCommand) Phone() string {
	return c.phone
}

func (c RegisterDriverCommand) Email() string {
	return c.email
}

func (c RegisterDriverCommand) Vehicle() driver.Vehicle {
	return c.vehicle
}

// Address is empty when the driver did not give one.
func (c RegisterDriverCommand) Address() string {
	return c.address
}

func (c *RegisterDriverCommand) setActor(actor order.Actor) error {
	if actor.Role() != order.RoleDriver {
		return errs.NewForbiddenError(actor.String(), "register as a driver")
	}
	c.actor = actor
	return nil
}

func (c *RegisterDriverCommand) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.name = name
	return nil
}

func (c *RegisterDriverCommand) setVehicle(vehicle driver.Vehicle) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}
	c.vehicle = vehicle
	return nil
}

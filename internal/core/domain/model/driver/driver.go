package driver

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrDriverIsNotConstructed is returned when a Driver was not created via NewDriver or RestoreDriver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")

	// ErrDriverHoldsAssignment is returned when a driver tries to change availability
	// while an assignment owns it.
	ErrDriverHoldsAssignment = errs.NewValueIsInvalidErrorWithCause(
		"available", errors.New("availability is managed by the active assignment"))
)

// Vehicle is what the driver delivers with.
type Vehicle struct {
	Type   string
	Number string
}

// Validate requires both fields.
func (v Vehicle) Validate() error {
	var errList []error
	if strings.TrimSpace(v.Type) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("vehicleType"))
	}
	if strings.TrimSpace(v.Number) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("vehicleNumber"))
	}
	return errors.Join(errList...)
}

// Driver is a delivery person. The identifier is the driver's user id, so a
// driver actor acts on its own record.
type Driver struct {
	id      kernel.UUID
	name    string
	phone   string
	email   string
	vehicle Vehicle

	// location is nil until the first report
	location *kernel.Location

	available bool
	updatedAt time.Time

	isConstructed bool
}

// NewDriver registers an available driver without a known position.
//
// Example:
//
//	d, err := driver.NewDriver(actor.ID(), "Nimal", "+94770000000", "nimal@example.com",
//	    driver.Vehicle{Type: "motorbike", Number: "WP-1234"})
func NewDriver(id kernel.UUID, name, phone, email string, vehicle Vehicle) (*Driver, error) {
	d := &Driver{
		available:     true,
		updatedAt:     time.Now().UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setContact(name, phone, email),
		d.setVehicle(vehicle),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver rebuilds a driver from persistence.
func RestoreDriver(
	id kernel.UUID,
	name, phone, email string,
	vehicle Vehicle,
	location *kernel.Location,
	available bool,
	updatedAt time.Time,
) (*Driver, error) {
	d := &Driver{
		available:     available,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setContact(name, phone, email),
		d.setVehicle(vehicle),
	); err != nil {
		return nil, err
	}

	if location != nil {
		if err := location.Validate(); err != nil {
			return nil, err
		}
		loc := *location
		d.location = &loc
	}

	return d, nil
}

func (d *Driver) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDriverIsNotConstructed
	}
	return nil
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) Phone() string {
	return d.phone
}

func (d *Driver) Email() string {
	return d.email
}

func (d *Driver) Vehicle() Vehicle {
	return d.vehicle
}

// Location returns the last reported position and whether one exists.
func (d *Driver) Location() (kernel.Location, bool) {
	if d.location == nil {
		return kernel.Location{}, false
	}
	return *d.location, true
}

func (d *Driver) IsAvailable() bool {
	return d.available
}

func (d *Driver) UpdatedAt() time.Time {
	return d.updatedAt
}

// UpdateLocation records the driver's current position.
func (d *Driver) UpdateLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.location = &location
	d.touch()
	return nil
}

// SetAvailability is the driver going on or off shift. It is refused while
// the driver holds a non-terminal assignment.
func (d *Driver) SetAvailability(available bool, holdsAssignment bool) error {
	if holdsAssignment {
		return ErrDriverHoldsAssignment
	}
	d.available = available
	d.touch()
	return nil
}

func (d *Driver) touch() {
	d.updatedAt = time.Now().UTC()
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setContact(name, phone, email string) error {
	var errList []error
	if strings.TrimSpace(name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("name"))
	}
	if strings.TrimSpace(phone) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("phone"))
	}
	if !strings.Contains(email, "@") {
		errList = append(errList, errs.NewValueIsInvalidError("email"))
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	d.name = name
	d.phone = phone
	d.email = email
	return nil
}

func (d *Driver) setVehicle(vehicle Vehicle) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}
	d.vehicle = vehicle
	return nil
}

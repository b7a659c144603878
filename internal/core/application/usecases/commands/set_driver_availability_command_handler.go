package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/driver"
)

// SetDriverAvailabilityCommandHandler toggles a driver's shift flag. While the
// driver is committed to an open assignment the flag belongs to the claim
// protocol and the change is refused with driver.ErrDriverHoldsAssignment.
type SetDriverAvailabilityCommandHandler struct {
	uowFactory UoWFactory
}

func NewSetDriverAvailabilityCommandHandler(uowFactory UoWFactory) SetDriverAvailabilityCommandHandler {
	return SetDriverAvailabilityCommandHandler{uowFactory: uowFactory}
}

func (h SetDriverAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetDriverAvailabilityCommand) (*driver.Driver, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	// a claim committing for this driver finishes before the lock is granted,
	// so the active-assignment check below sees it
	driverRepo := uow.DriverRepository()
	d, err := driverRepo.GetForUpdate(ctx, cmd.DriverID())
	if err != nil {
		return nil, err
	}

	holdsAssignment, err := uow.AssignmentRepository().HasActiveForDriver(ctx, d.ID())
	if err != nil {
		return nil, err
	}

	if err = d.SetAvailability(cmd.Available(), holdsAssignment); err != nil {
		return nil, err
	}

	if err = driverRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

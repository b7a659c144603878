package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/ports"
)

// UpdateDriverLocationCommandHandler stores a position report and fans it
// out to live trackers after commit. Only the position is written; the
// available flag read alongside it may already be stale.
type UpdateDriverLocationCommandHandler struct {
	uowFactory  DriverUoWFactory
	broadcaster ports.LocationBroadcaster
}

func NewUpdateDriverLocationCommandHandler(
	uowFactory DriverUoWFactory,
	broadcaster ports.LocationBroadcaster,
) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
	}
}

func (h UpdateDriverLocationCommandHandler) Handle(ctx context.Context, cmd UpdateDriverLocationCommand) (*driver.Driver, error) {
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

	repo := uow.DriverRepository()
	d, err := repo.Get(ctx, cmd.DriverID())
	if err != nil {
		return nil, err
	}

	if err = d.UpdateLocation(cmd.Location()); err != nil {
		return nil, err
	}

	if err = repo.UpdateLocation(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if h.broadcaster != nil {
		h.broadcaster.Broadcast(ports.DriverLocationUpdate{
			DriverID:   d.ID(),
			Lat:        cmd.Location().Lat(),
			Lng:        cmd.Location().Lng(),
			ReportedAt: d.UpdatedAt(),
		})
	}

	return d, nil
}

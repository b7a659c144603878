package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/ports"
)

// RegisterDriverCommandHandler creates a driver profile keyed by the
// driver's user id. A failed geocode leaves the driver without a location;
// the driver becomes selectable after the first location report.
type RegisterDriverCommandHandler struct {
	uowFactory DriverUoWFactory
	geocoder   ports.Geocoder
	logger     *slog.Logger
}

func NewRegisterDriverCommandHandler(
	uowFactory DriverUoWFactory,
	geocoder ports.Geocoder,
	logger *slog.Logger,
) RegisterDriverCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return RegisterDriverCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		logger:     logger,
	}
}

func (h RegisterDriverCommandHandler) Handle(ctx context.Context, cmd RegisterDriverCommand) (*driver.Driver, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	d, err := driver.NewDriver(cmd.Actor().ID(), cmd.Name(), cmd.Phone(), cmd.Email(), cmd.Vehicle())
	if err != nil {
		return nil, err
	}

	if cmd.Address() != "" {
		location, geoErr := h.geocoder.Geocode(ctx, cmd.Address())
		if geoErr != nil {
			h.logger.WarnContext(ctx, "geocoding driver address failed",
				"driver_id", d.ID().String(), "error", geoErr)
		} else if err = d.UpdateLocation(location); err != nil {
			return nil, err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DriverRepository().Add(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

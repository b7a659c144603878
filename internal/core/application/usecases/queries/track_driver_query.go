package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrTrackDriverQueryIsNotConstructed = errors.New(
	"TrackDriverQuery must be created via NewTrackDriverQuery constructor",
)

// TrackDriverQuery asks whether actor may follow the live location of a driver.
type TrackDriverQuery struct {
	driverID kernel.UUID
	actor    order.Actor

	guard guard.ConstructorGuard
}

func NewTrackDriverQuery(driverID kernel.UUID, actor order.Actor) (TrackDriverQuery, error) {
	if err := errors.Join(driverID.Validate(), actor.Role().Validate()); err != nil {
		return TrackDriverQuery{}, err
	}

	return TrackDriverQuery{
		driverID: driverID,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q TrackDriverQuery) DriverID() kernel.UUID {
	return q.driverID
}

func (q TrackDriverQuery) Actor() order.Actor {
	return q.actor
}

func (q TrackDriverQuery) Validate() error {
	return q.guard.Validate(ErrTrackDriverQueryIsNotConstructed)
}

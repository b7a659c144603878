package ports

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// DriverLocationUpdate is a single position report of a driver.
type DriverLocationUpdate struct {
	DriverID   kernel.UUID `json:"-"`
	Lat        float64     `json:"lat"`
	Lng        float64     `json:"lng"`
	ReportedAt time.Time   `json:"reportedAt"`
}

// LocationBroadcaster fans driver position reports out to live trackers.
type LocationBroadcaster interface {
	Broadcast(update DriverLocationUpdate)
}

package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for driver aggregates.
type DriverRepository interface {
	// Add registers a new driver.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update persists location and availability of an existing driver.
	// Callers must hold the row lock from GetForUpdate; the claim protocol
	// owns the available flag otherwise.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// UpdateLocation writes only the reported position, leaving the
	// available flag to the claim protocol.
	UpdateLocation(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver by identifier.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetForUpdate is Get with the driver row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetAllAvailable returns every driver whose available flag is set.
	// Drivers that never reported a location are included; the selector skips them.
	GetAllAvailable(ctx context.Context) ([]*driver.Driver, error)
}

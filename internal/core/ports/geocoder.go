package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// Geocoder resolves a free-form address to coordinates.
//
// Returns *errs.ObjectNotFoundError when the address matches nothing and
// *errs.UpstreamUnavailableError when the geocoder cannot be reached.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (kernel.Location, error)
}

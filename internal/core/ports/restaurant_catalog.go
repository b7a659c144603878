package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// Restaurant is the catalog view of a restaurant that the fulfillment
// service needs: where to pick up and whom to notify.
type Restaurant struct {
	ID      kernel.UUID
	Name    string
	Address string
	Email   string
	Phone   string
}

// MenuItem is the catalog's authoritative price and availability of an item.
type MenuItem struct {
	ID          string
	Name        string
	Price       kernel.Money
	IsAvailable bool
}

// RestaurantCatalog is the restaurant catalog collaborator.
//
// Implementations return *errs.ObjectNotFoundError for unknown restaurants or
// items and *errs.UpstreamUnavailableError when the catalog cannot be reached.
type RestaurantCatalog interface {
	GetRestaurant(ctx context.Context, restaurantID kernel.UUID) (Restaurant, error)
	GetMenuItem(ctx context.Context, restaurantID kernel.UUID, itemID string) (MenuItem, error)
}

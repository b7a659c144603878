package queries

import (
	"context"
	"slices"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler reads an order with its line items from the database.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns *errs.ObjectNotFoundError for an unknown id and
// *errs.ForbiddenError when the actor is not a party to the order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := readOrders(ctx, h.db, "WHERE o.id = ?", query.OrderID().String())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	row := rows[0]
	if !canView(query.Actor(), row) {
		return nil, errs.NewForbiddenError(query.Actor().String(), "view order "+row.view.ID)
	}

	return &row.view, nil
}

func canView(actor order.Actor, row orderRow) bool {
	id := actor.ID().String()
	switch actor.Role() {
	case order.RoleAdmin, order.RoleSystem:
		return true
	case order.RoleCustomer:
		return row.view.CustomerID == id
	case order.RoleRestaurant:
		return slices.Contains(row.restaurantIDs, id)
	case order.RoleDriver:
		return row.view.DriverID != nil && *row.view.DriverID == id
	default:
		return false
	}
}

package queries

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GetDeliveryQueryHandler reads an assignment together with the order
// columns needed to decide who may see it.
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (*AssignmentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			a.order_id,
			a.status,
			a.candidate_driver_ids,
			a.committed_driver_id,
			a.pickup_address,
			a.pickup_lat,
			a.pickup_lng,
			a.dropoff_address,
			a.dropoff_lat,
			a.dropoff_lng,
			a.created_at,
			a.updated_at,
			o.customer_id,
			o.restaurant_ids
		FROM delivery_assignments a
		JOIN orders o ON o.id = a.order_id
		WHERE a.order_id = ?
	`, query.OrderID().String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, err
		}
		return nil, errs.NewObjectNotFoundError("assignment", query.OrderID().String())
	}

	var (
		orderID, customerID  uuid.UUID
		view                 AssignmentView
		candidates           pq.StringArray
		restaurantIDs        pq.StringArray
		committed            uuid.NullUUID
		pickupLat, pickupLng sql.NullFloat64
		dropLat, dropLng     sql.NullFloat64
		createdAt, updatedAt time.Time
	)
	err = rows.Scan(
		&orderID,
		&view.Status,
		&candidates,
		&committed,
		&view.Pickup.Address,
		&pickupLat,
		&pickupLng,
		&view.Dropoff.Address,
		&dropLat,
		&dropLng,
		&createdAt,
		&updatedAt,
		&customerID,
		&restaurantIDs,
	)
	if err != nil {
		return nil, err
	}

	view.OrderID = orderID.String()
	view.CandidateDriverIDs = []string(candidates)
	if committed.Valid {
		s := committed.UUID.String()
		view.CommittedDriverID = &s
	}
	view.Pickup.Lat, view.Pickup.Lng = coordinates(pickupLat, pickupLng)
	view.Dropoff.Lat, view.Dropoff.Lng = coordinates(dropLat, dropLng)
	view.CreatedAt, view.UpdatedAt = createdAt.UTC(), updatedAt.UTC()

	actor := query.Actor()
	id := actor.ID().String()
	allowed := false
	switch actor.Role() {
	case order.RoleAdmin, order.RoleSystem:
		allowed = true
	case order.RoleCustomer:
		allowed = customerID.String() == id
	case order.RoleRestaurant:
		allowed = slices.Contains(restaurantIDs, id)
	case order.RoleDriver:
		allowed = slices.Contains(view.CandidateDriverIDs, id) ||
			(view.CommittedDriverID != nil && *view.CommittedDriverID == id)
	}
	if !allowed {
		return nil, errs.NewForbiddenError(actor.String(), "view delivery of order "+view.OrderID)
	}

	return &view, nil
}

func coordinates(lat, lng sql.NullFloat64) (*float64, *float64) {
	if !lat.Valid || !lng.Valid {
		return nil, nil
	}
	return &lat.Float64, &lng.Float64
}

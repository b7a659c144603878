package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackingGrant names the driver a stream may follow. OrderID is set when
// access comes from a delivery in progress.
type TrackingGrant struct {
	DriverID string  `json:"driverId"`
	OrderID  *string `json:"orderId,omitempty"`
}

// TrackDriverQueryHandler decides who may watch a driver move. Admins and
// the driver may always; a customer only while the driver carries one of
// their orders.
type TrackDriverQueryHandler struct {
	db *gorm.DB
}

func NewTrackDriverQueryHandler(db *gorm.DB) TrackDriverQueryHandler {
	return TrackDriverQueryHandler{db: db}
}

func (h TrackDriverQueryHandler) Handle(ctx context.Context, query TrackDriverQuery) (*TrackingGrant, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	actor := query.Actor()
	grant := &TrackingGrant{DriverID: query.DriverID().String()}

	switch actor.Role() {
	case order.RoleAdmin, order.RoleSystem:
		return grant, nil
	case order.RoleDriver:
		if actor.ID().IsEqual(query.DriverID()) {
			return grant, nil
		}
	case order.RoleCustomer:
		var orderIDs []uuid.UUID
		err := h.db.WithContext(ctx).Raw(`
			SELECT a.order_id
			FROM delivery_assignments a
			JOIN orders o ON o.id = a.order_id
			WHERE a.committed_driver_id = ?
			  AND a.status IN ?
			  AND o.customer_id = ?
			ORDER BY a.updated_at DESC
			LIMIT 1
		`,
			query.DriverID().String(),
			[]string{delivery.Accepted.String(), delivery.PickedUp.String()},
			actor.ID().String(),
		).Scan(&orderIDs).Error
		if err != nil {
			return nil, err
		}
		if len(orderIDs) > 0 {
			id := orderIDs[0].String()
			grant.OrderID = &id
			return grant, nil
		}
	}

	return nil, errs.NewForbiddenError(actor.String(), "track driver "+grant.DriverID)
}

package queries

import (
	"context"
	"strings"

	"fulfillment/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// ListOrdersQueryHandler pages through orders with raw SQL.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (*ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	where, args := buildOrderFilter(query.Actor(), query.Filter())

	var total int64
	if err := h.db.WithContext(ctx).Raw("SELECT COUNT(*) FROM orders o "+where, args...).Scan(&total).Error; err != nil {
		return nil, err
	}

	response := &ListOrdersQueryResponse{
		Orders: make([]OrderView, 0),
		Page:   query.Page(),
		Limit:  query.Limit(),
		Total:  total,
	}
	offset := (query.Page() - 1) * query.Limit()
	if int64(offset) >= total {
		return response, nil
	}

	rows, err := readOrders(ctx, h.db,
		where+" ORDER BY o.created_at DESC, o.id LIMIT ? OFFSET ?",
		append(args, query.Limit(), offset)...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		response.Orders = append(response.Orders, row.view)
	}

	return response, nil
}

// buildOrderFilter returns a WHERE clause (possibly empty) and its arguments.
func buildOrderFilter(actor order.Actor, filter OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	switch actor.Role() {
	case order.RoleCustomer:
		conds = append(conds, "o.customer_id = ?")
		args = append(args, actor.ID().String())
	case order.RoleRestaurant:
		conds = append(conds, "? = ANY(o.restaurant_ids)")
		args = append(args, actor.ID().String())
	case order.RoleDriver:
		conds = append(conds, "o.driver_id = ?")
		args = append(args, actor.ID().String())
	case order.RoleAdmin, order.RoleSystem:
	default:
		conds = append(conds, "FALSE")
	}

	if filter.CustomerID != nil {
		conds = append(conds, "o.customer_id = ?")
		args = append(args, filter.CustomerID.String())
	}
	if filter.RestaurantID != nil {
		conds = append(conds, "? = ANY(o.restaurant_ids)")
		args = append(args, filter.RestaurantID.String())
	}
	if filter.Status != nil {
		conds = append(conds, "o.status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.PaymentStatus != nil {
		conds = append(conds, "o.payment_status = ?")
		args = append(args, filter.PaymentStatus.String())
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderColumns = `
	o.id,
	o.customer_id,
	o.restaurant_ids,
	o.subtotal,
	o.delivery_fee,
	o.tax,
	o.total,
	o.delivery_address,
	o.delivery_instructions,
	o.delivery_customer_name,
	o.delivery_customer_email,
	o.delivery_customer_phone,
	o.payment_method,
	o.status,
	o.payment_status,
	o.driver_id,
	o.created_at,
	o.updated_at`

// orderRow carries the columns needed for visibility checks next to the view.
type orderRow struct {
	view          OrderView
	restaurantIDs []string
}

// readOrders runs "SELECT <orderColumns> FROM orders o " + clause and loads
// the line items of every returned order.
func readOrders(ctx context.Context, db *gorm.DB, clause string, args ...any) ([]orderRow, error) {
	rows, err := db.WithContext(ctx).Raw("SELECT "+orderColumns+" FROM orders o "+clause, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]orderRow, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, customerID               uuid.UUID
			restaurantIDs                pq.StringArray
			subtotal, fee, tax, total    decimal.Decimal
			delivery                     DeliveryView
			instructions, name, email    sql.NullString
			phone                        sql.NullString
			method, status, paymentState string
			driverID                     uuid.NullUUID
			createdAt, updatedAt         time.Time
		)

		err = rows.Scan(
			&id,
			&customerID,
			&restaurantIDs,
			&subtotal,
			&fee,
			&tax,
			&total,
			&delivery.Address,
			&instructions,
			&name,
			&email,
			&phone,
			&method,
			&status,
			&paymentState,
			&driverID,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, err
		}

		delivery.Instructions = instructions.String
		delivery.CustomerName = name.String
		delivery.CustomerEmail = email.String
		delivery.CustomerPhone = phone.String

		view := OrderView{
			ID:               id.String(),
			CustomerID:       customerID.String(),
			RestaurantOrders: make([]RestaurantOrderView, 0, len(restaurantIDs)),
			Subtotal:         subtotal.StringFixed(2),
			DeliveryFee:      fee.StringFixed(2),
			Tax:              tax.StringFixed(2),
			Total:            total.StringFixed(2),
			Delivery:         delivery,
			PaymentMethod:    method,
			Status:           status,
			PaymentStatus:    paymentState,
			CreatedAt:        createdAt.UTC(),
			UpdatedAt:        updatedAt.UTC(),
		}
		if driverID.Valid {
			s := driverID.UUID.String()
			view.DriverID = &s
		}

		index[view.ID] = len(result)
		result = append(result, orderRow{view: view, restaurantIDs: restaurantIDs})
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return result, nil
	}
	if err = readItems(ctx, db, result, index); err != nil {
		return nil, err
	}

	return result, nil
}

func readItems(ctx context.Context, db *gorm.DB, orders []orderRow, index map[string]int) error {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.view.ID)
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			restaurant_id,
			item_id,
			name,
			unit_price,
			quantity
		FROM order_items
		WHERE order_id IN ?
		ORDER BY order_id, position
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	subtotals := make(map[string]map[string]decimal.Decimal)
	for rows.Next() {
		var (
			orderID, restaurantID uuid.UUID
			item                  LineItemView
			unitPrice             decimal.Decimal
		)
		if err = rows.Scan(&orderID, &restaurantID, &item.ItemID, &item.Name, &unitPrice, &item.Quantity); err != nil {
			return err
		}

		amount := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		item.UnitPrice = unitPrice.StringFixed(2)
		item.Amount = amount.StringFixed(2)

		o := &orders[index[orderID.String()]].view
		rid := restaurantID.String()
		pos := -1
		for i, ro := range o.RestaurantOrders {
			if ro.RestaurantID == rid {
				pos = i
				break
			}
		}
		if pos < 0 {
			o.RestaurantOrders = append(o.RestaurantOrders, RestaurantOrderView{RestaurantID: rid})
			pos = len(o.RestaurantOrders) - 1
		}
		o.RestaurantOrders[pos].Items = append(o.RestaurantOrders[pos].Items, item)

		if subtotals[o.ID] == nil {
			subtotals[o.ID] = make(map[string]decimal.Decimal)
		}
		subtotals[o.ID][rid] = subtotals[o.ID][rid].Add(amount)
	}
	if err = rows.Err(); err != nil {
		return err
	}

	for i := range orders {
		o := &orders[i].view
		for j := range o.RestaurantOrders {
			o.RestaurantOrders[j].Subtotal = subtotals[o.ID][o.RestaurantOrders[j].RestaurantID].StringFixed(2)
		}
	}
	return nil
}

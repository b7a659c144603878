// Package orderrepo persists order aggregates with GORM. An order is one row
// in orders plus its line items in order_items, in catalog order.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Totals are stored as written at creation and re-checked on load.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	// RestaurantIDs lets restaurants filter their orders without a join
	RestaurantIDs pq.StringArray `gorm:"type:text[];not null"`

	Status        string `gorm:"type:varchar(32);not null;index"`
	PaymentStatus string `gorm:"type:varchar(16);not null"`
	PaymentMethod string `gorm:"type:varchar(32);not null"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Tax         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	Delivery DeliveryDTO `gorm:"embedded;embeddedPrefix:delivery_"`

	DriverID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// DeliveryDTO is embedded into the orders table with the delivery_ prefix.
type DeliveryDTO struct {
	Address       string `gorm:"type:text;not null"`
	Instructions  string `gorm:"type:text"`
	CustomerName  string `gorm:"type:varchar(255)"`
	CustomerEmail string `gorm:"type:varchar(255)"`
	CustomerPhone string `gorm:"type:varchar(64)"`
}

// OrderItemDTO is one line item. Position keeps the catalog order across
// restaurants so sub-orders are rebuilt in the order they were placed.
type OrderItemDTO struct {
	ID           uint            `gorm:"primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	RestaurantID uuid.UUID       `gorm:"type:uuid;not null"`
	ItemID       string          `gorm:"type:varchar(128);not null"`
	Name         string          `gorm:"type:varchar(255);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity     int             `gorm:"not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	orderID := aggregate.ID().Bytes()

	var driverID *uuid.UUID
	if id := aggregate.DriverID(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	var (
		restaurantIDs = make(pq.StringArray, 0)
		items         = make([]OrderItemDTO, 0)
	)
	for _, ro := range aggregate.RestaurantOrders() {
		restaurantIDs = append(restaurantIDs, ro.RestaurantID().String())
		for _, li := range ro.Items() {
			items = append(items, OrderItemDTO{
				OrderID:      orderID,
				Position:     len(items),
				RestaurantID: ro.RestaurantID().Bytes(),
				ItemID:       li.ItemID(),
				Name:         li.Name(),
				UnitPrice:    li.UnitPrice().Decimal(),
				Quantity:     li.Quantity(),
			})
		}
	}

	totals := aggregate.Totals()
	delivery := aggregate.Delivery()

	return OrderDTO{
		ID:            orderID,
		CustomerID:    aggregate.CustomerID().Bytes(),
		RestaurantIDs: restaurantIDs,
		Status:        aggregate.Status().String(),
		PaymentStatus: aggregate.PaymentStatus().String(),
		PaymentMethod: string(aggregate.PaymentMethod()),
		Subtotal:      totals.Subtotal().Decimal(),
		DeliveryFee:   totals.DeliveryFee().Decimal(),
		Tax:           totals.Tax().Decimal(),
		Total:         totals.Total().Decimal(),
		Delivery: DeliveryDTO{
			Address:       delivery.Address,
			Instructions:  delivery.Instructions,
			CustomerName:  delivery.CustomerName,
			CustomerEmail: delivery.CustomerEmail,
			CustomerPhone: delivery.CustomerPhone,
		},
		DriverID:  driverID,
		CreatedAt: aggregate.CreatedAt(),
		UpdatedAt: aggregate.UpdatedAt(),
		Items:     items,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	restaurantOrders, err := restaurantOrdersToDomain(dto.Items)
	if err != nil {
		return nil, err
	}

	totals, err := totalsToDomain(dto)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, dErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if dErr != nil {
			return nil, dErr
		}
		driverID = &dID
	}

	return order.RestoreOrder(
		id,
		customerID,
		restaurantOrders,
		totals,
		order.DeliveryDetails{
			Address:       dto.Delivery.Address,
			Instructions:  dto.Delivery.Instructions,
			CustomerName:  dto.Delivery.CustomerName,
			CustomerEmail: dto.Delivery.CustomerEmail,
			CustomerPhone: dto.Delivery.CustomerPhone,
		},
		order.PaymentMethod(dto.PaymentMethod),
		status,
		paymentStatus,
		driverID,
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
	)
}

// restaurantOrdersToDomain groups items by restaurant in first-seen order.
// items must be sorted by Position.
func restaurantOrdersToDomain(items []OrderItemDTO) ([]order.RestaurantOrder, error) {
	var (
		restaurants []uuid.UUID
		grouped     = make(map[uuid.UUID][]order.LineItem)
	)

	for _, item := range items {
		price, err := kernel.NewMoney(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		li, err := order.NewLineItem(item.ItemID, item.Name, price, item.Quantity)
		if err != nil {
			return nil, err
		}

		if _, seen := grouped[item.RestaurantID]; !seen {
			restaurants = append(restaurants, item.RestaurantID)
		}
		grouped[item.RestaurantID] = append(grouped[item.RestaurantID], li)
	}

	restaurantOrders := make([]order.RestaurantOrder, 0, len(restaurants))
	for _, rid := range restaurants {
		restaurantID, err := kernel.UUIDFromBytes(rid[:])
		if err != nil {
			return nil, err
		}
		ro, err := order.NewRestaurantOrder(restaurantID, grouped[rid])
		if err != nil {
			return nil, err
		}
		restaurantOrders = append(restaurantOrders, ro)
	}

	return restaurantOrders, nil
}

func totalsToDomain(dto OrderDTO) (order.Totals, error) {
	amounts := make([]kernel.Money, 0, 4)
	for _, d := range []decimal.Decimal{dto.Subtotal, dto.DeliveryFee, dto.Tax, dto.Total} {
		m, err := kernel.NewMoney(d)
		if err != nil {
			return order.Totals{}, err
		}
		amounts = append(amounts, m)
	}

	return order.RestoreTotals(amounts[0], amounts[1], amounts[2], amounts[3])
}

package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// MaxItemQuantity bounds a single line to keep totals sane.
const MaxItemQuantity = 100

// LineItem is one menu item in a restaurant sub-order. Name and unit price are
// taken from the restaurant catalog at creation time.
type LineItem struct {
	itemID    string
	name      string
	unitPrice kernel.Money
	quantity  int
}

func NewLineItem(itemID, name string, unitPrice kernel.Money, quantity int) (LineItem, error) {
	var errList []error
	if strings.TrimSpace(itemID) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("itemId"))
	}
	if strings.TrimSpace(name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("name"))
	}
	if quantity < 1 || quantity > MaxItemQuantity {
		errList = append(errList, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, MaxItemQuantity))
	}
	if err := errors.Join(errList...); err != nil {
		return LineItem{}, err
	}

	return LineItem{
		itemID:    itemID,
		name:      name,
		unitPrice: unitPrice,
		quantity:  quantity,
	}, nil
}

func (li LineItem) ItemID() string {
	return li.itemID
}

func (li LineItem) Name() string {
	return li.name
}

func (li LineItem) UnitPrice() kernel.Money {
	return li.unitPrice
}

func (li LineItem) Quantity() int {
	return li.quantity
}

// Amount is unit price times quantity.
func (li LineItem) Amount() kernel.Money {
	return li.unitPrice.Times(li.quantity)
}

// RestaurantOrder groups the line items fulfilled by one restaurant.
type RestaurantOrder struct {
	restaurantID kernel.UUID
	items        []LineItem
}

func NewRestaurantOrder(restaurantID kernel.UUID, items []LineItem) (RestaurantOrder, error) {
	if err := restaurantID.Validate(); err != nil {
		return RestaurantOrder{}, err
	}
	if len(items) == 0 {
		return RestaurantOrder{}, errs.NewValueIsRequiredErrorWithCause(
			"items", fmt.Errorf("restaurant %s has no items", restaurantID))
	}

	copied := make([]LineItem, len(items))
	copy(copied, items)
	return RestaurantOrder{restaurantID: restaurantID, items: copied}, nil
}

func (ro RestaurantOrder) RestaurantID() kernel.UUID {
	return ro.restaurantID
}

// Items returns a copy of the line items.
func (ro RestaurantOrder) Items() []LineItem {
	items := make([]LineItem, len(ro.items))
	copy(items, ro.items)
	return items
}

// Subtotal is the sum of the line amounts.
func (ro RestaurantOrder) Subtotal() kernel.Money {
	var sum kernel.Money
	for _, item := range ro.items {
		sum = sum.Add(item.Amount())
	}
	return sum
}

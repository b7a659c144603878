package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// OrderItemInput is an item the customer asks for. Name and price come from
// the catalog, never from the client.
type OrderItemInput struct {
	ItemID   string
	Quantity int
}

// RestaurantOrderInput groups the requested items of one restaurant.
type RestaurantOrderInput struct {
	RestaurantID kernel.UUID
	Items        []OrderItemInput
}

// CreateOrderCommand represents a customer placing an order.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customer,
//	    []RestaurantOrderInput{{RestaurantID: restaurantID, Items: []OrderItemInput{{ItemID: "burger", Quantity: 2}}}},
//	    order.DeliveryDetails{Address: "12 Galle Rd, Colombo 04"},
//	    order.PaymentMethodCard, idempotencyKey)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	customer         order.Actor
	restaurantOrders []RestaurantOrderInput
	delivery         order.DeliveryDetails
	paymentMethod    order.PaymentMethod
	idempotencyKey   string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request shape. Catalog checks happen in the handler.
// idempotencyKey is optional.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customer order.Actor,
	restaurantOrders []RestaurantOrderInput,
	delivery order.DeliveryDetails,
	paymentMethod order.PaymentMethod,
	idempotencyKey string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		idempotencyKey: strings.TrimSpace(idempotencyKey),
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomer(customer),
		cmd.setRestaurantOrders(restaurantOrders),
		cmd.setDelivery(delivery),
		cmd.setPaymentMethod(paymentMethod),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Customer() order.Actor {
	return c.customer
}

// RestaurantOrders returns a copy of the requested sub-orders.
func (c CreateOrderCommand) RestaurantOrders() []RestaurantOrderInput {
	out := make([]RestaurantOrderInput, len(c.restaurantOrders))
	copy(out, c.restaurantOrders)
	return out
}

func (c CreateOrderCommand) Delivery() order.DeliveryDetails {
	return c.delivery
}

func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

// IdempotencyKey is empty when the client did not send one.
func (c CreateOrderCommand) IdempotencyKey() string {
	return c.idempotencyKey
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomer(customer order.Actor) error {
	if customer.Role() != order.RoleCustomer {
		return errs.NewForbiddenError(customer.String(), "place an order")
	}
	c.customer = customer
	return nil
}

func (c *CreateOrderCommand) setRestaurantOrders(restaurantOrders []RestaurantOrderInput) error {
	if len(restaurantOrders) == 0 {
		return errs.NewValueIsRequiredError("restaurantOrders")
	}

	var errList []error
	for i, ro := range restaurantOrders {
		if err := ro.RestaurantID.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause("restaurantId", err))
		}
		if len(ro.Items) == 0 {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause("items",
				fmt.Errorf("restaurant order %d has no items", i)))
		}
		for _, item := range ro.Items {
			if strings.TrimSpace(item.ItemID) == "" {
				errList = append(errList, errs.NewValueIsRequiredError("itemId"))
			}
			if item.Quantity < 1 || item.Quantity > order.MaxItemQuantity {
				errList = append(errList, errs.NewValueIsOutOfRangeError(
					"quantity", item.Quantity, 1, order.MaxItemQuantity))
			}
		}
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	c.restaurantOrders = make([]RestaurantOrderInput, len(restaurantOrders))
	copy(c.restaurantOrders, restaurantOrders)
	return nil
}

func (c *CreateOrderCommand) setDelivery(delivery order.DeliveryDetails) error {
	if err := delivery.Validate(); err != nil {
		return err
	}
	c.delivery = delivery
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(method order.PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	c.paymentMethod = method
	return nil
}

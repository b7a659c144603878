package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrPaymentNotCaptured is returned when confirming an order whose payment is not paid.
	ErrPaymentNotCaptured = errs.NewValueIsInvalidErrorWithCause(
		"paymentStatus", errors.New("order cannot be confirmed before payment is captured"))
)

// DeliveryDetails describes where and to whom the order is delivered.
type DeliveryDetails struct {
	Address       string
	Instructions  string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Validate requires a delivery address.
func (d DeliveryDetails) Validate() error {
	if strings.TrimSpace(d.Address) == "" {
		return errs.NewValueIsRequiredError("deliveryAddress")
	}
	return nil
}

// Order is the aggregate root of one customer purchase. It owns the line
// items, the monetary totals and the lifecycle status, and it is the only
// place where status and payment status change.
//
// Order follows these invariants:
//   - Has at least one restaurant sub-order, each with at least one line item
//   - total = subtotal + deliveryFee + tax, computed once at creation
//   - Status changes only along the edges of transitionRules, by an allowed actor
//   - A driver is referenced if and only if the status is OnTheWay or Delivered
//   - Can only be created through NewOrder or RestoreOrder
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID

	// restaurantOrders keeps catalog order; the first restaurant is the pickup point
	restaurantOrders []RestaurantOrder
	totals           Totals

	delivery      DeliveryDetails
	paymentMethod PaymentMethod

	status        Status
	paymentStatus PaymentStatus

	// driverID is the committed driver once the delivery was claimed
	driverID *kernel.UUID

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewOrder creates a pending order and prices it once.
//
// Parameters:
//   - id: Unique identifier for the order
//   - customerID: The ordering customer
//   - restaurantOrders: One or more restaurant sub-orders with catalog-priced items
//   - delivery: Delivery address (required) and optional contact details
//   - paymentMethod: One of the supported payment methods
//   - pricing: Delivery fee and tax policy
//
// Returns:
//   - *Order: The created order in Pending status with PaymentPending
//   - error: All validation errors joined together
//
// Example:
//
//	item, _ := order.NewLineItem("burger", "Burger", kernel.MustMoney("500"), 1)
//	ro, _ := order.NewRestaurantOrder(restaurantID, []order.LineItem{item})
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, []order.RestaurantOrder{ro},
//	    order.DeliveryDetails{Address: "12 Galle Rd"}, order.PaymentMethodCard, order.DefaultPricing)
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantOrders []RestaurantOrder,
	delivery DeliveryDetails,
	paymentMethod PaymentMethod,
	pricing Pricing,
) (*Order, error) {
	now := time.Now().UTC()
	o := &Order{
		status:        Pending,
		paymentStatus: PaymentPending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantOrders(restaurantOrders),
		o.setDelivery(delivery),
		o.setPaymentMethod(paymentMethod),
	); err != nil {
		return nil, err
	}

	o.totals = ComputeTotals(o.restaurantOrders, pricing)
	return o, nil
}

// RestoreOrder rebuilds an order from persistence. Unlike NewOrder it takes
// the stored totals as they are, after re-checking their identity.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantOrders []RestaurantOrder,
	totals Totals,
	delivery DeliveryDetails,
	paymentMethod PaymentMethod,
	status Status,
	paymentStatus PaymentStatus,
	driverID *kernel.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		totals:        totals,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantOrders(restaurantOrders),
		o.setDelivery(delivery),
		o.setPaymentMethod(paymentMethod),
		o.setStatus(status, driverID),
		paymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	if _, err := RestoreTotals(totals.subtotal, totals.deliveryFee, totals.tax, totals.total); err != nil {
		return nil, err
	}

	o.paymentStatus = paymentStatus
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// RestaurantOrders returns a copy of the restaurant sub-orders.
func (o *Order) RestaurantOrders() []RestaurantOrder {
	ros := make([]RestaurantOrder, len(o.restaurantOrders))
	copy(ros, o.restaurantOrders)
	return ros
}

// PickupRestaurantID is the restaurant the driver collects from.
func (o *Order) PickupRestaurantID() kernel.UUID {
	return o.restaurantOrders[0].restaurantID
}

// HasRestaurant reports whether restaurantID fulfils part of the order.
func (o *Order) HasRestaurant(restaurantID kernel.UUID) bool {
	for _, ro := range o.restaurantOrders {
		if ro.restaurantID.IsEqual(restaurantID) {
			return true
		}
	}
	return false
}

func (o *Order) Totals() Totals {
	return o.totals
}

func (o *Order) Delivery() DeliveryDetails {
	return o.delivery
}

func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// DriverID returns the committed driver, or nil before the delivery is claimed
// and after cancellation.
func (o *Order) DriverID() *kernel.UUID {
	if o.driverID == nil {
		return nil
	}
	id := *o.driverID
	return &id
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Transition moves the order to target on behalf of actor.
//
// This method enforces the following business rules:
//   - target must be a direct successor of the current status
//   - actor's role must be allowed for that edge and actor must be a party to the order
//   - Confirmed requires the payment to be captured
//   - OnTheWay is only reachable through StartDelivery, which binds the driver
//   - Cancelled clears the driver reference; releasing the driver is the caller's job
//
// Returns:
//   - nil on success, with UpdatedAt refreshed
//   - *errs.IllegalTransitionError if the edge does not exist
//   - *errs.ForbiddenError if actor may not take the edge
//
// Example:
//
//	if err := o.Transition(restaurantActor, order.Preparing); err != nil {
//	    return err
//	}
func (o *Order) Transition(actor Actor, target Status) error {
	if target == OnTheWay {
		if err := o.checkTransition(actor, target); err != nil {
			return err
		}
		return errs.NewValueIsRequiredErrorWithCause("driverId",
			errors.New("an order goes on the way only when a driver claims it"))
	}
	return o.transition(actor, target, nil)
}

// StartDelivery records the driver that won the claim and moves the order
// from ReadyForPickup to OnTheWay. Only the system actor takes this edge.
func (o *Order) StartDelivery(actor Actor, driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	return o.transition(actor, OnTheWay, &driverID)
}

// SetPaymentStatus records a payment outcome. Only the system actor may do so.
func (o *Order) SetPaymentStatus(actor Actor, target PaymentStatus) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if !o.paymentStatus.CanTransitionTo(target) {
		return errs.NewIllegalTransitionError("payment", o.paymentStatus.String(), target.String())
	}
	if actor.role != RoleSystem {
		return errs.NewForbiddenError(actor.String(), fmt.Sprintf("set payment status to %s", target))
	}

	o.paymentStatus = target
	o.touch()
	return nil
}

func (o *Order) transition(actor Actor, target Status, driverID *kernel.UUID) error {
	if err := o.checkTransition(actor, target); err != nil {
		return err
	}
	if target == Confirmed && o.paymentStatus != PaymentPaid {
		return ErrPaymentNotCaptured
	}

	switch target {
	case OnTheWay:
		o.driverID = driverID
	case Cancelled:
		o.driverID = nil
	}

	o.status = target
	o.touch()
	return nil
}

// checkTransition verifies the edge exists and actor may take it.
func (o *Order) checkTransition(actor Actor, target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if !o.status.CanTransitionTo(target) {
		return errs.NewIllegalTransitionError("order", o.status.String(), target.String())
	}
	return o.authorize(actor, o.status, target)
}

func (o *Order) touch() {
	now := time.Now().UTC()
	if now.After(o.updatedAt) {
		o.updatedAt = now
	}
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setRestaurantOrders(restaurantOrders []RestaurantOrder) error {
	if len(restaurantOrders) == 0 {
		return errs.NewValueIsRequiredError("restaurantOrders")
	}
	for i, ro := range restaurantOrders {
		if len(ro.items) == 0 {
			return errs.NewValueIsRequiredErrorWithCause("items", fmt.Errorf("restaurant order %d has no items", i))
		}
	}

	o.restaurantOrders = make([]RestaurantOrder, len(restaurantOrders))
	copy(o.restaurantOrders, restaurantOrders)
	return nil
}

func (o *Order) setDelivery(delivery DeliveryDetails) error {
	if err := delivery.Validate(); err != nil {
		return err
	}
	o.delivery = delivery
	return nil
}

func (o *Order) setPaymentMethod(method PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	o.paymentMethod = method
	return nil
}

func (o *Order) setStatus(status Status, driverID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if status.HoldsDriver() && driverID == nil {
		return errs.NewValueIsRequiredErrorWithCause("driverId",
			fmt.Errorf("order in %s status must have a driver", status))
	}
	if !status.HoldsDriver() && driverID != nil {
		return errs.NewValueIsInvalidErrorWithCause("driverId",
			fmt.Errorf("order in %s status must not have a driver", status))
	}
	if driverID != nil {
		if err := driverID.Validate(); err != nil {
			return err
		}
		id := *driverID
		o.driverID = &id
	}
	o.status = status
	return nil
}

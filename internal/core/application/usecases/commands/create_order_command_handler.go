package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ErrPaymentDeclined is returned when the gateway gave a definite negative
// answer. The order has been cancelled by then.
var ErrPaymentDeclined = errors.New("payment declined")

// OrderPolicy holds the pricing settings of new orders.
type OrderPolicy struct {
	Pricing  order.Pricing
	Currency string
}

// CreateOrderCommandHandler places an order and drives it through payment.
//
// Sequence:
//  1. Price every item from the catalog (unreachable catalog: nothing persisted)
//  2. Persist the order as pending/pending
//  3. Capture the payment
//  4. Paid: mark paid and confirmed. Declined: mark failed and cancelled.
//     No answer: leave pending/pending and report the upstream failure.
//  5. Notify restaurants and customer, publish the status change (best-effort)
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, collaborators, policy)
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrPaymentDeclined):
//	    // o is cancelled with payment failed
//	case errors.Is(err, errs.ErrUpstreamUnavailable):
//	    // o may be nil (catalog) or pending (payment)
//	}
type CreateOrderCommandHandler struct {
	uowFactory    OrderUoWFactory
	collaborators Collaborators
	policy        OrderPolicy
}

// NewCreateOrderCommandHandler creates a handler for order placement.
// Requires Catalog and Payments in collaborators.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	collaborators Collaborators,
	policy OrderPolicy,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:    uowFactory,
		collaborators: collaborators,
		policy:        policy,
	}
}

// Handle places the order. The returned order is non-nil whenever it was
// persisted, including the payment declined and payment unreachable cases.
// A repeated idempotency key returns the order created by the first request.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	log := h.collaborators.logger().With("order_id", cmd.OrderID().String())
	persisted := false

	if key := cmd.IdempotencyKey(); key != "" && h.collaborators.Idempotency != nil {
		scopedKey := cmd.Customer().ID().String() + ":" + key

		existingID, reserved, reserveErr := h.collaborators.Idempotency.Reserve(ctx, scopedKey, cmd.OrderID())
		switch {
		case reserveErr != nil:
			log.WarnContext(ctx, "idempotency store unavailable, continuing without it", "error", reserveErr)
		case !reserved:
			return h.replay(ctx, cmd.Customer(), existingID)
		default:
			defer func() {
				if err != nil && !persisted {
					if releaseErr := h.collaborators.Idempotency.Release(ctx, scopedKey); releaseErr != nil {
						log.WarnContext(ctx, "releasing idempotency key failed", "error", releaseErr)
					}
				}
			}()
		}
	}

	restaurantOrders, err := h.priceItems(ctx, cmd.RestaurantOrders())
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(
		cmd.OrderID(),
		cmd.Customer().ID(),
		restaurantOrders,
		cmd.Delivery(),
		cmd.PaymentMethod(),
		h.policy.Pricing,
	)
	if err != nil {
		return nil, err
	}

	if err = h.save(ctx, o, true); err != nil {
		return nil, err
	}
	persisted = true

	result, err := h.collaborators.Payments.Capture(ctx, ports.PaymentRequest{
		OrderID:  o.ID(),
		Amount:   o.Totals().Total(),
		Currency: h.policy.Currency,
		Method:   o.PaymentMethod(),
	})
	if err != nil {
		log.WarnContext(ctx, "payment outcome unknown, order left pending", "error", err)
		return o, err
	}

	if !result.Succeeded {
		return o, h.decline(ctx, o, result.Reason)
	}

	if err = o.SetPaymentStatus(order.SystemActor, order.PaymentPaid); err != nil {
		return o, err
	}
	if err = o.Transition(order.SystemActor, order.Confirmed); err != nil {
		return o, err
	}
	if err = h.save(ctx, o, false); err != nil {
		log.ErrorContext(ctx, "payment captured but confirmation not stored",
			"transaction_id", result.TransactionID, "error", err)
		return o, err
	}

	h.collaborators.notifyRestaurants(ctx, o, fmt.Sprintf("New order %s is confirmed", o.ID()))
	h.collaborators.notifyCustomer(ctx, o, fmt.Sprintf("Your order %s is confirmed, total %s %s",
		o.ID(), o.Totals().Total(), h.policy.Currency))
	h.collaborators.publishStatusChanged(ctx, o, order.Pending, order.SystemActor)

	return o, nil
}

// priceItems turns requested items into catalog-priced line items.
// Unknown and unavailable items are validation errors, reported together.
func (h CreateOrderCommandHandler) priceItems(
	ctx context.Context,
	inputs []RestaurantOrderInput,
) ([]order.RestaurantOrder, error) {
	var (
		restaurantOrders = make([]order.RestaurantOrder, 0, len(inputs))
		errList          []error
	)

	for _, in := range inputs {
		items := make([]order.LineItem, 0, len(in.Items))
		for _, requested := range in.Items {
			menuItem, err := h.collaborators.Catalog.GetMenuItem(ctx, in.RestaurantID, requested.ItemID)
			if errors.Is(err, errs.ErrObjectNotFound) {
				errList = append(errList, errs.NewValueIsInvalidErrorWithCause("items", err))
				continue
			}
			if err != nil {
				return nil, err
			}
			if !menuItem.IsAvailable {
				errList = append(errList, errs.NewValueIsInvalidErrorWithCause("items",
					fmt.Errorf("item %s is not available", requested.ItemID)))
				continue
			}

			item, err := order.NewLineItem(requested.ItemID, menuItem.Name, menuItem.Price, requested.Quantity)
			if err != nil {
				errList = append(errList, err)
				continue
			}
			items = append(items, item)
		}

		if len(items) != len(in.Items) {
			continue
		}
		ro, err := order.NewRestaurantOrder(in.RestaurantID, items)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		restaurantOrders = append(restaurantOrders, ro)
	}

	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return restaurantOrders, nil
}

// decline records a definite payment refusal.
func (h CreateOrderCommandHandler) decline(ctx context.Context, o *order.Order, reason string) error {
	if err := o.SetPaymentStatus(order.SystemActor, order.PaymentFailed); err != nil {
		return err
	}
	if err := o.Transition(order.SystemActor, order.Cancelled); err != nil {
		return err
	}
	if err := h.save(ctx, o, false); err != nil {
		return err
	}

	h.collaborators.notifyCustomer(ctx, o, fmt.Sprintf("Payment for order %s was declined", o.ID()))
	h.collaborators.publishStatusChanged(ctx, o, order.Pending, order.SystemActor)

	if reason == "" {
		return ErrPaymentDeclined
	}
	return fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
}

// replay returns the order an earlier request with the same key created.
func (h CreateOrderCommandHandler) replay(ctx context.Context, customer order.Actor, id kernel.UUID) (*order.Order, error) {
	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CustomerID().IsEqual(customer.ID()) {
		return nil, errs.NewForbiddenError(customer.String(), "replay another customer's order")
	}
	return o, nil
}

func (h CreateOrderCommandHandler) save(ctx context.Context, o *order.Order, isNew bool) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	if isNew {
		if err := repo.Add(ctx, o); err != nil {
			return err
		}
		return uow.Commit(ctx)
	}

	// the order was visible while the payment ran; a party may have cancelled it
	stored, err := repo.GetForUpdate(ctx, o.ID())
	if err != nil {
		return err
	}
	if stored.Status() != order.Pending {
		return errs.NewIllegalTransitionError("order", stored.Status().String(), o.Status().String())
	}
	if err = repo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// HeaderIdempotencyKey makes order creation safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// CreateOrder handles POST /api/v1/orders.
// A retried request with the same Idempotency-Key answers 200 with the order
// the first request created.
func (s *Server) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, err)
	}

	restaurantOrders, err := req.restaurantOrders()
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		actorFrom(c),
		restaurantOrders,
		req.delivery(),
		order.PaymentMethod(req.PaymentMethod),
		c.Request().Header.Get(HeaderIdempotencyKey),
	)
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.failForOrder(c, err, o)
	}

	status := http.StatusCreated
	if !o.ID().IsEqual(cmd.OrderID()) {
		status = http.StatusOK
	}
	return c.JSON(status, queries.NewOrderView(o))
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(c echo.Context) error {
	var (
		customerID, restaurantID, status, paymentStatus string
		page, limit                                      int
	)
	if err := echo.QueryParamsBinder(c).
		String("customerId", &customerID).
		String("restaurantId", &restaurantID).
		String("status", &status).
		String("paymentStatus", &paymentStatus).
		Int("page", &page).
		Int("limit", &limit).
		BindError(); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("query", err))
	}

	filter, err := orderFilter(customerID, restaurantID, status, paymentStatus)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewListOrdersQuery(actorFrom(c), filter, page, limit)
	if err != nil {
		return s.fail(c, err)
	}

	resp, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func orderFilter(customerID, restaurantID, status, paymentStatus string) (queries.OrderFilter, error) {
	var filter queries.OrderFilter

	if customerID != "" {
		id, err := kernel.UUIDFromString(customerID)
		if err != nil {
			return filter, errs.NewValueIsInvalidErrorWithCause("customerId", err)
		}
		filter.CustomerID = &id
	}
	if restaurantID != "" {
		id, err := kernel.UUIDFromString(restaurantID)
		if err != nil {
			return filter, errs.NewValueIsInvalidErrorWithCause("restaurantId", err)
		}
		filter.RestaurantID = &id
	}
	if status != "" {
		st, err := order.ParseStatus(status)
		if err != nil {
			return filter, err
		}
		filter.Status = &st
	}
	if paymentStatus != "" {
		ps, err := order.ParsePaymentStatus(paymentStatus)
		if err != nil {
			return filter, err
		}
		filter.PaymentStatus = &ps
	}
	return filter, nil
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actorFrom(c))
	if err != nil {
		return s.fail(c, err)
	}

	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// ChangeOrderStatus handles PATCH /api/v1/orders/:id/status.
func (s *Server) ChangeOrderStatus(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	var req changeOrderStatusRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.fail(c, err)
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, actorFrom(c), target)
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.handlers.ChangeOrderStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, queries.NewOrderView(o))
}

package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"

	"github.com/labstack/echo/v4"
)

// DispatchOrder handles POST /api/v1/orders/:id/dispatch. Finding no driver
// is a normal outcome and answers 200.
func (s *Server) DispatchOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewDispatchOrderCommand(orderID)
	if err != nil {
		return s.fail(c, err)
	}

	a, err := s.handlers.DispatchOrder.Handle(c.Request().Context(), cmd)
	if errors.Is(err, delivery.ErrNoDriverAvailable) {
		return c.JSON(http.StatusOK, dispatchResponse{Status: dispatchStatusNoDriverAvailable})
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newDispatchResponse(a))
}

// AcceptDelivery handles PUT /api/v1/orders/:id/assign: the calling driver
// claims the offer. Losing the race answers 409.
func (s *Server) AcceptDelivery(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAcceptDeliveryCommand(orderID, actorFrom(c))
	if err != nil {
		return s.fail(c, err)
	}

	a, err := s.handlers.AcceptDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, queries.NewAssignmentView(a))
}

// MarkPickedUp handles PUT /api/v1/orders/:id/pickup.
func (s *Server) MarkPickedUp(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewMarkPickedUpCommand(orderID, actorFrom(c))
	if err != nil {
		return s.fail(c, err)
	}

	a, err := s.handlers.MarkPickedUp.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, queries.NewAssignmentView(a))
}

// GetDelivery handles GET /api/v1/orders/:id/delivery.
func (s *Server) GetDelivery(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetDeliveryQuery(orderID, actorFrom(c))
	if err != nil {
		return s.fail(c, err)
	}

	view, err := s.handlers.GetDelivery.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

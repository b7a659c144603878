package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// RegisterDriver handles POST /api/v1/delivery-persons. The profile id is the
// caller's user id.
func (s *Server) RegisterDriver(c echo.Context) error {
	var req registerDriverRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewRegisterDriverCommand(actorFrom(c), req.Name, req.Phone, req.Email, req.vehicle(), req.Address)
	if err != nil {
		return s.fail(c, err)
	}

	d, err := s.handlers.RegisterDriver.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, queries.NewDriverView(d))
}

// SetDriverAvailability handles PUT /api/v1/delivery-persons/:id/availability.
func (s *Server) SetDriverAvailability(c echo.Context) error {
	driverID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	var req driverAvailabilityRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewSetDriverAvailabilityCommand(driverID, actorFrom(c), *req.Available)
	if err != nil {
		return s.fail(c, err)
	}

	d, err := s.handlers.SetDriverAvailability.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, queries.NewDriverView(d))
}

// UpdateDriverLocation handles PUT /api/v1/delivery-persons/:id/location.
func (s *Server) UpdateDriverLocation(c echo.Context) error {
	driverID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	var req driverLocationRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(driverID, actorFrom(c), *req.Lat, *req.Lng)
	if err != nil {
		return s.fail(c, err)
	}

	d, err := s.handlers.UpdateDriverLocation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, queries.NewDriverView(d))
}

// TrackDriver handles GET /api/v1/tracking/drivers/:id as a Server-Sent
// Events stream. Every location report of the driver becomes a "location"
// event. The stream ends when the client goes away. Only admins, the driver
// and the customer whose order the driver is carrying may subscribe.
func (s *Server) TrackDriver(c echo.Context) error {
	driverID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewTrackDriverQuery(driverID, actorFrom(c))
	if err != nil {
		return s.fail(c, err)
	}
	if _, err = s.handlers.TrackDriver.Handle(c.Request().Context(), query); err != nil {
		return s.fail(c, err)
	}

	sub := s.tracker.Subscribe(driverID)
	defer s.tracker.Unsubscribe(sub)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			data, err := json.Marshal(update)
			if err != nil {
				return err
			}
			if _, err = fmt.Fprintf(w, "event: location\ndata: %s\n\n", data); err != nil {
				return nil
			}
			w.Flush()
		case <-heartbeat.C:
			if _, err = fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

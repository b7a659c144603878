// Package http is the inbound REST adapter of the fulfillment service.
// It authenticates callers from a bearer token, binds and validates request
// bodies, calls the command and query handlers, and maps their errors to
// HTTP status codes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/core/application/tracking"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handler is any command or query handler.
type Handler[C, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Handlers are the use cases the server exposes.
type Handlers struct {
	CreateOrder           Handler[commands.CreateOrderCommand, *order.Order]
	ChangeOrderStatus     Handler[commands.ChangeOrderStatusCommand, *order.Order]
	DispatchOrder         Handler[commands.DispatchOrderCommand, *delivery.Assignment]
	AcceptDelivery        Handler[commands.AcceptDeliveryCommand, *delivery.Assignment]
	MarkPickedUp          Handler[commands.MarkPickedUpCommand, *delivery.Assignment]
	RegisterDriver        Handler[commands.RegisterDriverCommand, *driver.Driver]
	SetDriverAvailability Handler[commands.SetDriverAvailabilityCommand, *driver.Driver]
	UpdateDriverLocation  Handler[commands.UpdateDriverLocationCommand, *driver.Driver]

	GetOrder    Handler[queries.GetOrderQuery, *queries.OrderView]
	ListOrders  Handler[queries.ListOrdersQuery, *queries.ListOrdersQueryResponse]
	GetDelivery Handler[queries.GetDeliveryQuery, *queries.AssignmentView]
	TrackDriver Handler[queries.TrackDriverQuery, *queries.TrackingGrant]
}

// DefaultHeartbeat is how often an idle tracking stream sends a comment line.
const DefaultHeartbeat = 15 * time.Second

// Server holds the HTTP handlers of the API.
type Server struct {
	handlers  Handlers
	tracker   *tracking.Registry
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewServer creates a server over handlers. tracker feeds the live
// location streams.
func NewServer(handlers Handlers, tracker *tracking.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handlers:  handlers,
		tracker:   tracker,
		heartbeat: DefaultHeartbeat,
		logger:    logger.With("component", "http"),
	}
}

// WithHeartbeat overrides the tracking stream heartbeat interval.
func (s *Server) WithHeartbeat(d time.Duration) *Server {
	if d > 0 {
		s.heartbeat = d
	}
	return s
}

// NewEcho builds the echo instance with logging, recovery and every route registered.
//
// Example:
//
//	e := http.NewEcho(server, []byte(cfg.JWTSecret))
//	e.Start(":8080")
func NewEcho(s *Server, jwtSecret []byte) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = s.handleHTTPError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			s.logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))

	s.Register(e, jwtSecret)
	return e
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo, jwtSecret []byte) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1", authenticate(jwtSecret))

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.PATCH("/orders/:id/status", s.ChangeOrderStatus)
	api.POST("/orders/:id/dispatch", s.DispatchOrder, requireRole(order.RoleAdmin))
	api.PUT("/orders/:id/assign", s.AcceptDelivery)
	api.PUT("/orders/:id/pickup", s.MarkPickedUp)
	api.GET("/orders/:id/delivery", s.GetDelivery)

	api.POST("/delivery-persons", s.RegisterDriver)
	api.PUT("/delivery-persons/:id/availability", s.SetDriverAvailability)
	api.PUT("/delivery-persons/:id/location", s.UpdateDriverLocation)

	api.GET("/tracking/drivers/:id", s.TrackDriver)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// pathUUID parses a path parameter into a UUID.
func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	return c.Validate(req)
}

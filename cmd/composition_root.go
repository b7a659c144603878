package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/catalog"
	"fulfillment/internal/adapters/out/events"
	"fulfillment/internal/adapters/out/geocoder"
	"fulfillment/internal/adapters/out/idempotency"
	"fulfillment/internal/adapters/out/notification"
	"fulfillment/internal/adapters/out/payment"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/tracking"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	collaborators commands.Collaborators
	policy        commands.OrderPolicy
	tracker       *tracking.Registry
	logger        *slog.Logger

	closers []func() error
}

// NewCompositionRoot wires the outbound adapters. Kafka and Redis are
// optional and only built when configured.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	pricing, err := cfg.Pricing()
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		policy:     commands.OrderPolicy{Pricing: pricing, Currency: cfg.Currency},
		tracker:    tracking.NewRegistry(tracking.DefaultBuffer),
		logger:     logger,
	}

	c.collaborators = commands.Collaborators{
		Catalog:  catalog.NewClient(cfg.CatalogURL, cfg.UpstreamTimeout),
		Payments: payment.NewClient(cfg.PaymentURL, cfg.UpstreamTimeout),
		Geocoder: geocoder.NewClient(cfg.GeocoderURL, cfg.UpstreamTimeout),
		Logger:   logger.With("component", "collaborators"),
	}

	notifier, err := c.newNotifier()
	if err != nil {
		return nil, err
	}
	c.collaborators.Notifier = notifier

	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderChangedTopic)
		c.closers = append(c.closers, publisher.Close)
		c.collaborators.Events = publisher
	}

	if cfg.RedisAddr != "" {
		rdb := idempotency.NewClient(cfg.RedisAddr, cfg.UpstreamTimeout)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout)
		if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
			logger.Warn("redis unreachable, idempotency keys degrade until it recovers", "error", pingErr)
		}
		cancel()
		c.closers = append(c.closers, rdb.Close)
		c.collaborators.Idempotency = idempotency.NewRedisStore(rdb, idempotency.DefaultTTL)
	}

	return c, nil
}

func (c *CompositionRoot) newNotifier() (ports.Notifier, error) {
	if c.cfg.NotificationTransport != NotificationTransportAMQP {
		return notification.NewHTTPNotifier(c.cfg.NotificationURL, c.cfg.UpstreamTimeout), nil
	}

	notifier, err := notification.DialAMQPNotifier(c.cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("connect notification broker: %w", err)
	}
	c.closers = append(c.closers, notifier.Close)
	return notifier, nil
}

// Close releases broker and cache connections.
func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errList...)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) driverUoWFactory() commands.DriverUoWFactory {
	return FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) crossUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.collaborators, c.policy)
}

func (c *CompositionRoot) CreateDispatchOrderCommandHandler() commands.DispatchOrderCommandHandler {
	return commands.NewDispatchOrderCommandHandler(c.crossUoWFactory(), c.collaborators)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(
		c.crossUoWFactory(), c.CreateDispatchOrderCommandHandler(), c.collaborators)
}

func (c *CompositionRoot) CreateAcceptDeliveryCommandHandler() commands.AcceptDeliveryCommandHandler {
	return commands.NewAcceptDeliveryCommandHandler(c.crossUoWFactory(), c.collaborators)
}

func (c *CompositionRoot) CreateMarkPickedUpCommandHandler() commands.MarkPickedUpCommandHandler {
	return commands.NewMarkPickedUpCommandHandler(c.crossUoWFactory())
}

func (c *CompositionRoot) CreateRedispatchOrdersCommandHandler() commands.RedispatchOrdersCommandHandler {
	return commands.NewRedispatchOrdersCommandHandler(
		c.crossUoWFactory(), c.CreateDispatchOrderCommandHandler(), c.logger.With("component", "redispatch"))
}

func (c *CompositionRoot) CreateRegisterDriverCommandHandler() commands.RegisterDriverCommandHandler {
	return commands.NewRegisterDriverCommandHandler(
		c.driverUoWFactory(), c.collaborators.Geocoder, c.logger.With("component", "register_driver"))
}

func (c *CompositionRoot) CreateSetDriverAvailabilityCommandHandler() commands.SetDriverAvailabilityCommandHandler {
	return commands.NewSetDriverAvailabilityCommandHandler(c.crossUoWFactory())
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	return commands.NewUpdateDriverLocationCommandHandler(c.driverUoWFactory(), c.tracker)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateTrackDriverQueryHandler() queries.TrackDriverQueryHandler {
	return queries.NewTrackDriverQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the echo instance with every route.
func (c *CompositionRoot) CreateHTTPServer() *echo.Echo {
	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:           c.CreateCreateOrderCommandHandler(),
		ChangeOrderStatus:     c.CreateChangeOrderStatusCommandHandler(),
		DispatchOrder:         c.CreateDispatchOrderCommandHandler(),
		AcceptDelivery:        c.CreateAcceptDeliveryCommandHandler(),
		MarkPickedUp:          c.CreateMarkPickedUpCommandHandler(),
		RegisterDriver:        c.CreateRegisterDriverCommandHandler(),
		SetDriverAvailability: c.CreateSetDriverAvailabilityCommandHandler(),
		UpdateDriverLocation:  c.CreateUpdateDriverLocationCommandHandler(),
		GetOrder:              c.CreateGetOrderQueryHandler(),
		ListOrders:            c.CreateListOrdersQueryHandler(),
		GetDelivery:           c.CreateGetDeliveryQueryHandler(),
		TrackDriver:           c.CreateTrackDriverQueryHandler(),
	}, c.tracker, c.logger)
	return httpin.NewEcho(server, []byte(c.cfg.JWTSecret))
}

// CreateJobManager builds the scheduled jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	retry := jobs.NewDispatchRetryJob(
		c.CreateRedispatchOrdersCommandHandler(), c.cfg.DispatchRetrySpec, jobs.DefaultDispatchBatchSize, c.logger)
	return jobs.NewJobManager(retry)
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

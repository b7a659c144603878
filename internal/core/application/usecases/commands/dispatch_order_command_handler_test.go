package commands_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dispatchFixture struct {
	parties        orderParties
	orderRepo      *MockOrderRepository
	driverRepo     *MockDriverRepository
	assignmentRepo *MockAssignmentRepository
	uow            *MockUoW
	factory        *MockUoWFactory
	catalog        *MockCatalog
	geocoder       *MockGeocoder
	notifier       *MockNotifier
	handler        commands.DispatchOrderCommandHandler
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		parties:        orderParties{customer: mustActor(order.RoleCustomer), restaurant: mustActor(order.RoleRestaurant)},
		orderRepo:      new(MockOrderRepository),
		driverRepo:     new(MockDriverRepository),
		assignmentRepo: new(MockAssignmentRepository),
		uow:            newTransactionalUoW(),
		factory:        new(MockUoWFactory),
		catalog:        new(MockCatalog),
		geocoder:       new(MockGeocoder),
		notifier:       new(MockNotifier),
	}
	f.factory.On("Create").Return(f.uow)
	f.uow.On("OrderRepository").Return(f.orderRepo)
	f.uow.On("DriverRepository").Return(f.driverRepo)
	f.uow.On("AssignmentRepository").Return(f.assignmentRepo)

	f.handler = commands.NewDispatchOrderCommandHandler(f.factory, commands.Collaborators{
		Catalog:  f.catalog,
		Geocoder: f.geocoder,
		Notifier: f.notifier,
	})
	return f
}

func (f *dispatchFixture) restaurantAt(loc kernel.Location) {
	f.catalog.On("GetRestaurant", mock.Anything, f.parties.restaurant.ID()).
		Return(ports.Restaurant{ID: f.parties.restaurant.ID(), Name: "Pizza Place", Address: "Pizza Place, Colombo 03"}, nil)
	f.geocoder.On("Geocode", mock.Anything, "Pizza Place, Colombo 03").Return(loc, nil)
}

func driverAt(t *testing.T, lat, lng float64) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), "Nimal", "+94770000000", "nimal@example.com",
		driver.Vehicle{Type: "motorbike", Number: "WP-1234"})
	require.NoError(t, err)
	require.NoError(t, d.UpdateLocation(mustLocation(lat, lng)))
	return d
}

func dispatchCmd(t *testing.T, id kernel.UUID) commands.DispatchOrderCommand {
	t.Helper()
	cmd, err := commands.NewDispatchOrderCommand(id)
	require.NoError(t, err)
	return cmd
}

func TestDispatchOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	o := newOrderIn(t, f.parties, order.ReadyForPickup, kernel.UUID{})
	pickup := mustLocation(6.9271, 79.8612)

	// two drivers ~120 m away, two ~300 m away
	near1 := driverAt(t, 6.9271+0.001079, 79.8612)
	far1 := driverAt(t, 6.9271+0.002698, 79.8612)
	near2 := driverAt(t, 6.9271-0.001079, 79.8612)
	far2 := driverAt(t, 6.9271-0.002698, 79.8612)

	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil)
	f.orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	f.restaurantAt(pickup)
	f.geocoder.On("Geocode", ctx, "12 Galle Rd, Colombo 04").Return(kernel.Location{}, errors.New("no match")).Once()
	f.assignmentRepo.On("Get", ctx, o.ID()).Return(nil, errs.NewObjectNotFoundError("orderId", o.ID())).Once()
	f.driverRepo.On("GetAllAvailable", ctx).Return([]*driver.Driver{near1, far1, near2, far2}, nil).Once()
	f.assignmentRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Assignment")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Channel == ports.AudienceDriver
	})).Return(nil).Twice()

	asg, err := f.handler.Handle(ctx, dispatchCmd(t, o.ID()))

	require.NoError(t, err)
	assert.Equal(t, delivery.Pending, asg.Status())
	assert.Equal(t, []kernel.UUID{near1.ID(), near2.ID()}, asg.Candidates())
	assert.Nil(t, asg.Dropoff().Location, "drop-off geocoding is best-effort")
	assert.Equal(t, order.ReadyForPickup, o.Status())
	f.assignmentRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestDispatchOrderCommandHandler_Handle_NoDriverAvailable(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	o := newOrderIn(t, f.parties, order.ReadyForPickup, kernel.UUID{})
	pickup := mustLocation(6.9271, 79.8612)

	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil)
	f.orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	f.restaurantAt(pickup)
	f.geocoder.On("Geocode", ctx, o.Delivery().Address).Return(mustLocation(6.90, 79.86), nil).Once()
	f.assignmentRepo.On("Get", ctx, o.ID()).Return(nil, errs.NewObjectNotFoundError("orderId", o.ID())).Once()
	f.driverRepo.On("GetAllAvailable", ctx).Return([]*driver.Driver{}, nil).Once()

	asg, err := f.handler.Handle(ctx, dispatchCmd(t, o.ID()))

	require.ErrorIs(t, err, delivery.ErrNoDriverAvailable)
	assert.Nil(t, asg)
	f.assignmentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestDispatchOrderCommandHandler_Handle_ReturnsExistingAssignment(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	o := newOrderIn(t, f.parties, order.ReadyForPickup, kernel.UUID{})
	existing := newAssignmentFor(t, o, kernel.NewUUID())

	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil)
	f.orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	f.restaurantAt(mustLocation(6.9271, 79.8612))
	f.geocoder.On("Geocode", ctx, o.Delivery().Address).Return(mustLocation(6.90, 79.86), nil).Once()
	f.assignmentRepo.On("Get", ctx, o.ID()).Return(existing, nil).Once()

	asg, err := f.handler.Handle(ctx, dispatchCmd(t, o.ID()))

	require.NoError(t, err)
	assert.Same(t, existing, asg)
	f.driverRepo.AssertNotCalled(t, "GetAllAvailable", mock.Anything)
}

func TestDispatchOrderCommandHandler_Handle_ConcurrentDispatchReturnsWinner(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	o := newOrderIn(t, f.parties, order.ReadyForPickup, kernel.UUID{})
	near := driverAt(t, 6.9271+0.001079, 79.8612)
	winner := newAssignmentFor(t, o, near.ID())

	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil)
	f.orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	f.restaurantAt(mustLocation(6.9271, 79.8612))
	f.geocoder.On("Geocode", ctx, o.Delivery().Address).Return(mustLocation(6.90, 79.86), nil).Once()
	f.assignmentRepo.On("Get", ctx, o.ID()).Return(nil, errs.NewObjectNotFoundError("orderId", o.ID())).Once()
	f.driverRepo.On("GetAllAvailable", ctx).Return([]*driver.Driver{near}, nil).Once()
	f.assignmentRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Assignment")).Return(delivery.ErrAlreadyDispatched).Once()
	f.assignmentRepo.On("Get", ctx, o.ID()).Return(winner, nil).Once()

	asg, err := f.handler.Handle(ctx, dispatchCmd(t, o.ID()))

	require.NoError(t, err)
	assert.Same(t, winner, asg)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestDispatchOrderCommandHandler_Handle_OrderNotReady(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	o := newOrderIn(t, f.parties, order.Preparing, kernel.UUID{})

	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()

	_, err := f.handler.Handle(ctx, dispatchCmd(t, o.ID()))

	require.ErrorIs(t, err, services.ErrOrderNotReadyForPickup)
	f.catalog.AssertNotCalled(t, "GetRestaurant", mock.Anything, mock.Anything)
}

func TestDispatchOrderCommandHandler_Handle_PickupGeocodingFails(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	o := newOrderIn(t, f.parties, order.ReadyForPickup, kernel.UUID{})

	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.catalog.On("GetRestaurant", ctx, f.parties.restaurant.ID()).
		Return(ports.Restaurant{Address: "Pizza Place, Colombo 03"}, nil).Once()
	f.geocoder.On("Geocode", ctx, "Pizza Place, Colombo 03").
		Return(kernel.Location{}, errs.NewUpstreamUnavailableError("geocoder")).Once()

	_, err := f.handler.Handle(ctx, dispatchCmd(t, o.ID()))

	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestNewDispatchOrderCommand_InvalidID(t *testing.T) {
	_, err := commands.NewDispatchOrderCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	var cmd commands.DispatchOrderCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrDispatchOrderCommandIsNotConstructed)
}

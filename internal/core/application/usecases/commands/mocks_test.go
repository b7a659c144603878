package commands_test

import (
	"context"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllReadyWithoutAssignment(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetAllAvailable(ctx context.Context) ([]*driver.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) Add(ctx context.Context, a *delivery.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, a *delivery.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Get(ctx context.Context, orderID kernel.UUID) (*delivery.Assignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Claim(ctx context.Context, a *delivery.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Release(ctx context.Context, a *delivery.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) HasActiveForDriver(ctx context.Context, driverID kernel.UUID) (bool, error) {
	args := m.Called(ctx, driverID)
	return args.Bool(0), args.Error(1)
}

// MockUoW satisfies every unit of work flavour the handlers use.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	args := m.Called()
	return args.Get(0).(ports.DriverRepository)
}

func (m *MockUoW) AssignmentRepository() ports.AssignmentRepository {
	args := m.Called()
	return args.Get(0).(ports.AssignmentRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockDriverUoWFactory struct{ mock.Mock }

func (m *MockDriverUoWFactory) Create() commands.DriverUoW {
	args := m.Called()
	return args.Get(0).(commands.DriverUoW)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) GetRestaurant(ctx context.Context, id kernel.UUID) (ports.Restaurant, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.Restaurant), args.Error(1)
}

func (m *MockCatalog) GetMenuItem(ctx context.Context, restaurantID kernel.UUID, itemID string) (ports.MenuItem, error) {
	args := m.Called(ctx, restaurantID, itemID)
	return args.Get(0).(ports.MenuItem), args.Error(1)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) Capture(ctx context.Context, req ports.PaymentRequest) (ports.PaymentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.PaymentResult), args.Error(1)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.Location), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, e ports.OrderStatusChanged) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockIdempotencyStore struct{ mock.Mock }

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, orderID kernel.UUID) (kernel.UUID, bool, error) {
	args := m.Called(ctx, key, orderID)
	return args.Get(0).(kernel.UUID), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockLocationBroadcaster struct{ mock.Mock }

func (m *MockLocationBroadcaster) Broadcast(update ports.DriverLocationUpdate) {
	m.Called(update)
}

// mustActor builds an actor or panics.
func mustActor(role order.Role) order.Actor {
	a, err := order.NewActor(role, kernel.NewUUID())
	if err != nil {
		panic(err)
	}
	return a
}

func mustLocation(lat, lng float64) kernel.Location {
	loc, err := kernel.NewLocation(lat, lng)
	if err != nil {
		panic(err)
	}
	return loc
}

// newTransactionalUoW expects one Begin, deferred Rollback and returns the mock.
// Commit is left to the test.
func newTransactionalUoW() *MockUoW {
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	return uow
}

type orderParties struct {
	customer   order.Actor
	restaurant order.Actor
}

// newOrderIn builds an order owned by p and walks it to status. OnTheWay and
// Delivered are committed to driverID.
func newOrderIn(t *testing.T, p orderParties, status order.Status, driverID kernel.UUID) *order.Order {
	t.Helper()

	item, err := order.NewLineItem("kottu", "Chicken Kottu", kernel.MustMoney("950"), 1)
	require.NoError(t, err)
	ro, err := order.NewRestaurantOrder(p.restaurant.ID(), []order.LineItem{item})
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), p.customer.ID(), []order.RestaurantOrder{ro},
		order.DeliveryDetails{Address: "12 Galle Rd, Colombo 04"}, order.PaymentMethodCard, order.DefaultPricing)
	require.NoError(t, err)

	steps := []func() error{
		func() error { return o.SetPaymentStatus(order.SystemActor, order.PaymentPaid) },
		func() error { return o.Transition(order.SystemActor, order.Confirmed) },
		func() error { return o.Transition(p.restaurant, order.Preparing) },
		func() error { return o.Transition(p.restaurant, order.ReadyForPickup) },
		func() error { return o.StartDelivery(order.SystemActor, driverID) },
	}
	targets := map[order.Status]int{
		order.Pending:        0,
		order.Confirmed:      2,
		order.Preparing:      3,
		order.ReadyForPickup: 4,
		order.OnTheWay:       5,
	}
	for _, step := range steps[:targets[status]] {
		require.NoError(t, step())
	}
	return o
}

// newAssignmentFor opens a pending offer for o to candidates.
func newAssignmentFor(t *testing.T, o *order.Order, candidates ...kernel.UUID) *delivery.Assignment {
	t.Helper()
	pickup := mustLocation(6.9271, 79.8612)
	a, err := delivery.NewAssignment(o.ID(), candidates,
		delivery.Stop{Address: "Pizza Place, Colombo 03", Location: &pickup},
		delivery.Stop{Address: o.Delivery().Address})
	require.NoError(t, err)
	return a
}

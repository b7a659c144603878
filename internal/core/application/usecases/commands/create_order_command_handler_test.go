package commands_test

import (
	"context"
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type createOrderFixture struct {
	customer     order.Actor
	restaurantID kernel.UUID
	orderRepo    *MockOrderRepository
	uow          *MockUoW
	factory      *MockOrderUoWFactory
	catalog      *MockCatalog
	payments     *MockPaymentGateway
	notifier     *MockNotifier
	events       *MockEventPublisher
	idempotency  *MockIdempotencyStore
	handler      commands.CreateOrderCommandHandler
}

func newCreateOrderFixture() *createOrderFixture {
	f := &createOrderFixture{
		customer:     mustActor(order.RoleCustomer),
		restaurantID: kernel.NewUUID(),
		orderRepo:    new(MockOrderRepository),
		uow:          newTransactionalUoW(),
		factory:      new(MockOrderUoWFactory),
		catalog:      new(MockCatalog),
		payments:     new(MockPaymentGateway),
		notifier:     new(MockNotifier),
		events:       new(MockEventPublisher),
		idempotency:  new(MockIdempotencyStore),
	}
	f.factory.On("Create").Return(f.uow)
	f.uow.On("OrderRepository").Return(f.orderRepo)

	f.handler = commands.NewCreateOrderCommandHandler(f.factory, commands.Collaborators{
		Catalog:     f.catalog,
		Payments:    f.payments,
		Notifier:    f.notifier,
		Events:      f.events,
		Idempotency: f.idempotency,
	}, commands.OrderPolicy{Pricing: order.DefaultPricing, Currency: "LKR"})
	return f
}

// command orders one burger at 500 and two fries at 300.
func (f *createOrderFixture) command(t *testing.T, key string) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), f.customer,
		[]commands.RestaurantOrderInput{{
			RestaurantID: f.restaurantID,
			Items: []commands.OrderItemInput{
				{ItemID: "burger", Quantity: 1},
				{ItemID: "fries", Quantity: 2},
			},
		}},
		order.DeliveryDetails{Address: "12 Galle Rd, Colombo 04", CustomerEmail: "c@example.com"},
		order.PaymentMethodCard, key)
	require.NoError(t, err)
	return cmd
}

func (f *createOrderFixture) catalogPrices() {
	f.catalog.On("GetMenuItem", mock.Anything, f.restaurantID, "burger").
		Return(ports.MenuItem{ID: "burger", Name: "Burger", Price: kernel.MustMoney("500"), IsAvailable: true}, nil)
	f.catalog.On("GetMenuItem", mock.Anything, f.restaurantID, "fries").
		Return(ports.MenuItem{ID: "fries", Name: "Fries", Price: kernel.MustMoney("300"), IsAvailable: true}, nil)
}

// stillPending makes the stored copy read back under the row lock a pending order.
func (f *createOrderFixture) stillPending(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()

	item, err := order.NewLineItem("burger", "Burger", kernel.MustMoney("500"), 1)
	require.NoError(t, err)
	ro, err := order.NewRestaurantOrder(f.restaurantID, []order.LineItem{item})
	require.NoError(t, err)
	stored, err := order.NewOrder(id, f.customer.ID(), []order.RestaurantOrder{ro},
		order.DeliveryDetails{Address: "12 Galle Rd, Colombo 04"}, order.PaymentMethodCard, order.DefaultPricing)
	require.NoError(t, err)

	f.orderRepo.On("GetForUpdate", mock.Anything, id).Return(stored, nil).Once()
	return stored
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "")
	f.catalogPrices()

	f.orderRepo.On("Add", ctx, mock.MatchedBy(func(o *order.Order) bool {
		return o.Status() == order.Pending && o.PaymentStatus() == order.PaymentPending
	})).Return(nil).Once()
	f.payments.On("Capture", ctx, mock.MatchedBy(func(r ports.PaymentRequest) bool {
		return r.OrderID.IsEqual(cmd.OrderID()) && r.Amount.String() == "1305.00" &&
			r.Currency == "LKR" && r.Method == order.PaymentMethodCard
	})).Return(ports.PaymentResult{Succeeded: true, TransactionID: "tx-1"}, nil).Once()
	f.stillPending(t, cmd.OrderID())
	f.orderRepo.On("Update", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Twice()
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Channel == ports.AudienceRestaurant && n.Recipient == f.restaurantID.String()
	})).Return(nil).Once()
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Channel == ports.AudienceCustomer && n.Recipient == "c@example.com"
	})).Return(nil).Once()
	f.events.On("PublishOrderStatusChanged", ctx, mock.MatchedBy(func(e ports.OrderStatusChanged) bool {
		return e.From == "pending" && e.To == "confirmed" && e.PaymentStatus == "paid"
	})).Return(nil).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, o.Status())
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus())
	assert.Equal(t, "1100.00", o.Totals().Subtotal().String())
	assert.Equal(t, "55.00", o.Totals().Tax().String())
	assert.Equal(t, "1305.00", o.Totals().Total().String())
	assert.Equal(t, "Fries", o.RestaurantOrders()[0].Items()[1].Name())

	f.orderRepo.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_CatalogUnavailable(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "")

	f.catalog.On("GetMenuItem", ctx, f.restaurantID, "burger").
		Return(ports.MenuItem{}, errs.NewUpstreamUnavailableError("catalog")).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	assert.Nil(t, o)
	f.orderRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_UnavailableItem(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "")

	f.catalog.On("GetMenuItem", ctx, f.restaurantID, "burger").
		Return(ports.MenuItem{ID: "burger", Name: "Burger", Price: kernel.MustMoney("500")}, nil).Once()
	f.catalog.On("GetMenuItem", ctx, f.restaurantID, "fries").
		Return(ports.MenuItem{}, errs.NewObjectNotFoundError("itemId", "fries")).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Contains(t, err.Error(), "burger is not available")
	assert.Contains(t, err.Error(), "fries")
	assert.Nil(t, o)
	f.orderRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_PaymentDeclined(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "")
	f.catalogPrices()

	f.orderRepo.On("Add", ctx, mock.Anything).Return(nil).Once()
	f.payments.On("Capture", ctx, mock.Anything).
		Return(ports.PaymentResult{Succeeded: false, Reason: "insufficient funds"}, nil).Once()
	f.stillPending(t, cmd.OrderID())
	f.orderRepo.On("Update", ctx, mock.MatchedBy(func(o *order.Order) bool {
		return o.Status() == order.Cancelled && o.PaymentStatus() == order.PaymentFailed
	})).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Twice()
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Channel == ports.AudienceCustomer
	})).Return(nil).Once()
	f.events.On("PublishOrderStatusChanged", ctx, mock.MatchedBy(func(e ports.OrderStatusChanged) bool {
		return e.To == "cancelled" && e.PaymentStatus == "failed"
	})).Return(nil).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrPaymentDeclined)
	assert.Contains(t, err.Error(), "insufficient funds")
	require.NotNil(t, o)
	assert.Equal(t, order.Cancelled, o.Status())
	assert.Equal(t, order.PaymentFailed, o.PaymentStatus())
	assert.Nil(t, o.DriverID())
	f.orderRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_PaymentUnreachable(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "")
	f.catalogPrices()

	f.orderRepo.On("Add", ctx, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.payments.On("Capture", ctx, mock.Anything).
		Return(ports.PaymentResult{}, errs.NewUpstreamUnavailableErrorWithCause("payment", context.DeadlineExceeded)).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	require.NotNil(t, o)
	assert.Equal(t, order.Pending, o.Status())
	assert.Equal(t, order.PaymentPending, o.PaymentStatus())
	f.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_NotificationFailureIsIgnored(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "")
	f.catalogPrices()

	f.orderRepo.On("Add", ctx, mock.Anything).Return(nil).Once()
	f.stillPending(t, cmd.OrderID())
	f.orderRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Twice()
	f.payments.On("Capture", ctx, mock.Anything).Return(ports.PaymentResult{Succeeded: true}, nil).Once()
	f.notifier.On("Notify", ctx, mock.Anything).Return(errors.New("smtp down"))
	f.events.On("PublishOrderStatusChanged", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, o.Status())
}

func TestCreateOrderCommandHandler_Handle_IdempotentReplay(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "key-1")

	item, err := order.NewLineItem("burger", "Burger", kernel.MustMoney("500"), 1)
	require.NoError(t, err)
	ro, err := order.NewRestaurantOrder(f.restaurantID, []order.LineItem{item})
	require.NoError(t, err)
	existing, err := order.NewOrder(kernel.NewUUID(), f.customer.ID(), []order.RestaurantOrder{ro},
		order.DeliveryDetails{Address: "12 Galle Rd"}, order.PaymentMethodCard, order.DefaultPricing)
	require.NoError(t, err)

	f.idempotency.On("Reserve", ctx, f.customer.ID().String()+":key-1", cmd.OrderID()).
		Return(existing.ID(), false, nil).Once()
	f.orderRepo.On("Get", ctx, existing.ID()).Return(existing, nil).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Same(t, existing, o)
	f.catalog.AssertNotCalled(t, "GetMenuItem", mock.Anything, mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_ReleasesKeyWhenNothingPersisted(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "key-2")
	key := f.customer.ID().String() + ":key-2"

	f.idempotency.On("Reserve", ctx, key, cmd.OrderID()).Return(cmd.OrderID(), true, nil).Once()
	f.catalog.On("GetMenuItem", ctx, f.restaurantID, "burger").
		Return(ports.MenuItem{}, errs.NewUpstreamUnavailableError("catalog")).Once()
	f.idempotency.On("Release", ctx, key).Return(nil).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	f.idempotency.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_IdempotencyStoreDown(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "key-3")
	f.catalogPrices()

	f.idempotency.On("Reserve", ctx, mock.Anything, cmd.OrderID()).
		Return(kernel.UUID{}, false, errors.New("redis: connection refused")).Once()
	f.orderRepo.On("Add", ctx, mock.Anything).Return(nil).Once()
	f.stillPending(t, cmd.OrderID())
	f.orderRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Twice()
	f.payments.On("Capture", ctx, mock.Anything).Return(ports.PaymentResult{Succeeded: true}, nil).Once()
	f.notifier.On("Notify", ctx, mock.Anything).Return(nil)
	f.events.On("PublishOrderStatusChanged", ctx, mock.Anything).Return(nil)

	o, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, o.Status())
	f.idempotency.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_InvalidCommand(t *testing.T) {
	f := newCreateOrderFixture()

	_, err := f.handler.Handle(t.Context(), commands.CreateOrderCommand{})

	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
}

func TestCreateOrderCommandHandler_Handle_CancelledWhilePaying(t *testing.T) {
	ctx := t.Context()
	f := newCreateOrderFixture()
	cmd := f.command(t, "")
	f.catalogPrices()

	f.orderRepo.On("Add", ctx, mock.Anything).Return(nil).Once()
	f.payments.On("Capture", ctx, mock.Anything).Return(ports.PaymentResult{Succeeded: true, TransactionID: "tx-9"}, nil).Once()
	stored := f.stillPending(t, cmd.OrderID())
	require.NoError(t, stored.Transition(f.customer, order.Cancelled))
	f.uow.On("Commit", ctx).Return(nil).Once()

	o, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrIllegalTransition)
	require.NotNil(t, o)
	f.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishOrderStatusChanged", mock.Anything, mock.Anything)
	f.uow.AssertExpectations(t)
}

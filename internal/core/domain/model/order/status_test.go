package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_StringAndParse(t *testing.T) {
	all := []order.Status{
		order.Pending, order.Confirmed, order.Preparing, order.ReadyForPickup,
		order.OnTheWay, order.Delivered, order.Cancelled,
	}

	for _, s := range all {
		parsed, err := order.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
		require.NoError(t, s.Validate())
	}

	assert.Equal(t, "ready_for_pickup", order.ReadyForPickup.String())
	assert.Equal(t, "unknown", order.Status(42).String())

	_, err := order.ParseStatus("ready")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	_, err = order.ParseStatus("unknown")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	require.Error(t, order.Unknown.Validate())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	forward := []order.Status{
		order.Pending, order.Confirmed, order.Preparing, order.ReadyForPickup, order.OnTheWay, order.Delivered,
	}

	t.Run("each status reaches only its direct successor or cancelled", func(t *testing.T) {
		for i, from := range forward {
			for j, to := range forward {
				assert.Equal(t, j == i+1, from.CanTransitionTo(to), "%s -> %s", from, to)
			}
			assert.Equal(t, !from.IsTerminal(), from.CanTransitionTo(order.Cancelled), "%s -> cancelled", from)
		}
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		for _, to := range append(forward, order.Cancelled) {
			assert.False(t, order.Cancelled.CanTransitionTo(to))
		}
	})
}

func TestPaymentStatus(t *testing.T) {
	for _, s := range []order.PaymentStatus{
		order.PaymentPending, order.PaymentPaid, order.PaymentFailed, order.PaymentRefunded,
	} {
		parsed, err := order.ParsePaymentStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	assert.True(t, order.PaymentPending.CanTransitionTo(order.PaymentPaid))
	assert.True(t, order.PaymentPending.CanTransitionTo(order.PaymentFailed))
	assert.True(t, order.PaymentPaid.CanTransitionTo(order.PaymentRefunded))
	assert.False(t, order.PaymentFailed.CanTransitionTo(order.PaymentPaid))
	assert.False(t, order.PaymentRefunded.CanTransitionTo(order.PaymentPaid))
}

func TestRoleAndActor(t *testing.T) {
	t.Run("system role cannot be parsed from tokens", func(t *testing.T) {
		_, err := order.ParseRole("system")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		role, err := order.ParseRole("driver")
		require.NoError(t, err)
		assert.Equal(t, order.RoleDriver, role)
	})

	t.Run("external actors need an identity", func(t *testing.T) {
		_, err := order.NewActor(order.RoleCustomer, kernel.UUID{})
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

		_, err = order.NewActor(order.RoleSystem, kernel.NewUUID())
		require.Error(t, err)
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "system", order.SystemActor.String())
	})
}

func TestLineItem(t *testing.T) {
	t.Run("amount is price times quantity", func(t *testing.T) {
		li, err := order.NewLineItem("pizza", "Pizza", kernel.MustMoney("12.50"), 3)

		require.NoError(t, err)
		assert.Equal(t, "37.50", li.Amount().String())
	})

	t.Run("rejects empty and out of range fields", func(t *testing.T) {
		_, err := order.NewLineItem("", "", kernel.MustMoney("1"), 0)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("restaurant order needs items", func(t *testing.T) {
		_, err := order.NewRestaurantOrder(kernel.NewUUID(), nil)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

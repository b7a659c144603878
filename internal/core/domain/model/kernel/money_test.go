package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("should round to two places", func(t *testing.T) {
		m, err := kernel.NewMoney(decimal.RequireFromString("10.005"))

		require.NoError(t, err)
		assert.Equal(t, "10.01", m.String())
	})

	t.Run("should reject negative amounts", func(t *testing.T) {
		_, err := kernel.NewMoney(decimal.NewFromInt(-1))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject malformed literals", func(t *testing.T) {
		_, err := kernel.MoneyFromString("ten")
		require.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("subtotal of line items", func(t *testing.T) {
		subtotal := kernel.MustMoney("500").Times(1).Add(kernel.MustMoney("300").Times(2))

		assert.Equal(t, "1100.00", subtotal.String())
	})

	t.Run("percent rounds to cents", func(t *testing.T) {
		tax := kernel.MustMoney("10.10").Percent(decimal.RequireFromString("0.05"))

		assert.Equal(t, "0.51", tax.String())
	})

	t.Run("equality ignores trailing zeros", func(t *testing.T) {
		assert.True(t, kernel.MustMoney("1.5").IsEqual(kernel.MustMoney("1.50")))
		assert.True(t, kernel.Money{}.IsZero())
	})
}

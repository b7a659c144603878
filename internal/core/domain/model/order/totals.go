package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Pricing holds the fee and tax policy applied at order creation.
type Pricing struct {
	deliveryFee kernel.Money
	taxRate     decimal.Decimal
}

// DefaultPricing is a flat 150.00 delivery fee and 5% tax on the subtotal.
var DefaultPricing = Pricing{
	deliveryFee: kernel.MustMoney("150"),
	taxRate:     decimal.RequireFromString("0.05"),
}

// NewPricing validates the tax rate lies in [0, 1].
func NewPricing(deliveryFee kernel.Money, taxRate decimal.Decimal) (Pricing, error) {
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return Pricing{}, errs.NewValueIsOutOfRangeError("taxRate", taxRate.String(), 0, 1)
	}
	return Pricing{deliveryFee: deliveryFee, taxRate: taxRate}, nil
}

func (p Pricing) DeliveryFee() kernel.Money {
	return p.deliveryFee
}

func (p Pricing) TaxRate() decimal.Decimal {
	return p.taxRate
}

// Totals are the monetary amounts of an order. They satisfy
// total = subtotal + deliveryFee + tax and never change after creation.
type Totals struct {
	subtotal    kernel.Money
	deliveryFee kernel.Money
	tax         kernel.Money
	total       kernel.Money
}

// ComputeTotals prices the restaurant orders with p.
func ComputeTotals(restaurantOrders []RestaurantOrder, p Pricing) Totals {
	var subtotal kernel.Money
	for _, ro := range restaurantOrders {
		subtotal = subtotal.Add(ro.Subtotal())
	}
	tax := subtotal.Percent(p.taxRate)

	return Totals{
		subtotal:    subtotal,
		deliveryFee: p.deliveryFee,
		tax:         tax,
		total:       subtotal.Add(p.deliveryFee).Add(tax),
	}
}

// RestoreTotals rebuilds persisted totals and re-checks their identity.
func RestoreTotals(subtotal, deliveryFee, tax, total kernel.Money) (Totals, error) {
	if !subtotal.Add(deliveryFee).Add(tax).IsEqual(total) {
		return Totals{}, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%s != %s + %s + %s", total, subtotal, deliveryFee, tax))
	}
	return Totals{subtotal: subtotal, deliveryFee: deliveryFee, tax: tax, total: total}, nil
}

func (t Totals) Subtotal() kernel.Money {
	return t.subtotal
}

func (t Totals) DeliveryFee() kernel.Money {
	return t.deliveryFee
}

func (t Totals) Tax() kernel.Money {
	return t.tax
}

func (t Totals) Total() kernel.Money {
	return t.total
}


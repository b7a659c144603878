package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// PaymentStatus tracks the capture of the order amount.
// Only the system actor moves it:
//
//	PaymentPending ──> PaymentPaid ──> PaymentRefunded
//	       │
//	       └──> PaymentFailed
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	PaymentPending
	PaymentPaid
	PaymentFailed
	PaymentRefunded
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentPaid:    {PaymentRefunded},
}

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentUnknown:  "unknown",
		PaymentPending:  "pending",
		PaymentPaid:     "paid",
		PaymentFailed:   "failed",
		PaymentRefunded: "refunded",
	}
}

// ParsePaymentStatus maps the wire name of a payment status back to its value.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for status, name := range getPaymentStatusStrings() {
		if status != PaymentUnknown && name == s {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause(
		"paymentStatus", fmt.Errorf("%q is not a valid payment status", s))
}

func (s PaymentStatus) Validate() error {
	if s <= PaymentUnknown || s > PaymentRefunded {
		return errs.NewValueIsInvalidErrorWithCause(
			"paymentStatus", fmt.Errorf("%d is not a valid payment status", s))
	}
	return nil
}

func (s PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// CanTransitionTo reports whether target directly follows s.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer pays for the order.
type PaymentMethod string

const (
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodOnlineBanking PaymentMethod = "online_banking"
	PaymentMethodMobileWallet  PaymentMethod = "mobile_wallet"
)

// Validate rejects methods the payment gateway does not accept.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentMethodCard, PaymentMethodOnlineBanking, PaymentMethodMobileWallet:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"paymentMethod", fmt.Errorf("%q is not a supported payment method", string(m)))
	}
}

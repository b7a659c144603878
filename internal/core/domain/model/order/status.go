package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Preparing ──> ReadyForPickup ──> OnTheWay ──> Delivered
//	   │            │             │               │               │
//	   └────────────┴─────────────┴───────────────┴───────────────┴──> Cancelled
//
// Delivered and Cancelled are terminal. The legal edges and the roles allowed
// to take each of them are defined once in transitionRules.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota

	// Pending is the initial status; payment has not been captured yet.
	Pending

	// Confirmed means payment was captured and the restaurant was notified.
	Confirmed

	// Preparing means the owning restaurant accepted and started the order.
	Preparing

	// ReadyForPickup triggers driver dispatch.
	ReadyForPickup

	// OnTheWay means a driver claimed the delivery.
	OnTheWay

	// Delivered is terminal.
	Delivered

	// Cancelled is terminal and reachable from every non-terminal status.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Confirmed:      "confirmed",
		Preparing:      "preparing",
		ReadyForPickup: "ready_for_pickup",
		OnTheWay:       "on_the_way",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
	}
}

// ParseStatus maps the wire name of a status back to its value.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values read from storage or input.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransitionTo reports whether target is a direct successor of s.
func (s Status) CanTransitionTo(target Status) bool {
	_, ok := transitionRules[edge{from: s, to: target}]
	return ok
}

// HoldsDriver reports whether an order in this status must reference its
// committed driver.
func (s Status) HoldsDriver() bool {
	return s == OnTheWay || s == Delivered
}

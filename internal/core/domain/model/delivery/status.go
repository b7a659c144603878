package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of an assignment.
//
//	Pending ──> Accepted ──> PickedUp ──> Delivered
//	   │           │  └──────────────────────^
//	   └───────────┴────────────┴──> Cancelled
type Status int

const (
	Unknown Status = iota
	Pending
	Accepted
	PickedUp
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Accepted:  "accepted",
		PickedUp:  "picked_up",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// ParseStatus maps the wire name of a status back to its value.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"assignmentStatus", fmt.Errorf("%q is not a valid assignment status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"assignmentStatus", fmt.Errorf("%d is not a valid assignment status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsClosed reports whether the assignment no longer binds a driver.
func (s Status) IsClosed() bool {
	return s == Delivered || s == Cancelled
}

// IsCommitted reports whether a driver has claimed the assignment.
func (s Status) IsCommitted() bool {
	return s == Accepted || s == PickedUp || s == Delivered
}

package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrAssignmentIsNotConstructed is returned when an Assignment was not created via
	// NewAssignment or RestoreAssignment.
	ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment constructor")

	// ErrNoDriverAvailable is the business condition of an empty candidate set.
	// Dispatch is retried later; it is never a server error.
	ErrNoDriverAvailable = errors.New("no drivers currently available")

	// ErrAssignmentAlreadyClaimed is returned to a candidate that lost the race.
	ErrAssignmentAlreadyClaimed = errors.New("assignment already claimed")

	// ErrDriverUnavailable is returned when the accepting driver is already busy.
	ErrDriverUnavailable = errors.New("driver is not available")

	// ErrAlreadyDispatched is returned when an assignment already exists for the order.
	ErrAlreadyDispatched = errors.New("order already has a delivery assignment")
)

// Stop is a pickup or drop-off point. Location is nil when the address could
// not be geocoded.
type Stop struct {
	Address  string
	Location *kernel.Location
}

// Assignment binds one order's delivery to a driver.
type Assignment struct {
	orderID    kernel.UUID
	candidates []kernel.UUID

	// committedDriverID is written once by Accept
	committedDriverID *kernel.UUID
	status            Status

	pickup  Stop
	dropoff Stop

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewAssignment opens a pending offer to candidates. Duplicate candidates are
// collapsed, and an empty set yields ErrNoDriverAvailable.
//
// Example:
//
//	a, err := delivery.NewAssignment(orderID, selected, delivery.Stop{Address: r.Address, Location: &pickup}, dropoff)
//	if errors.Is(err, delivery.ErrNoDriverAvailable) {
//	    // retry later
//	}
func NewAssignment(orderID kernel.UUID, candidates []kernel.UUID, pickup, dropoff Stop) (*Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if pickup.Location == nil {
		return nil, errs.NewValueIsRequiredError("pickupLocation")
	}

	unique := dedupe(candidates)
	if len(unique) == 0 {
		return nil, ErrNoDriverAvailable
	}

	now := time.Now().UTC()
	a := &Assignment{
		orderID:       orderID,
		candidates:    unique,
		status:        Pending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}
	if err := errors.Join(a.setStop("pickup", pickup), a.setStop("dropoff", dropoff)); err != nil {
		return nil, err
	}
	a.pickup, a.dropoff = pickup, dropoff
	return a, nil
}

// RestoreAssignment rebuilds an assignment from persistence.
func RestoreAssignment(
	orderID kernel.UUID,
	candidates []kernel.UUID,
	committedDriverID *kernel.UUID,
	status Status,
	pickup, dropoff Stop,
	createdAt, updatedAt time.Time,
) (*Assignment, error) {
	if err := errors.Join(orderID.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	if status.IsCommitted() && committedDriverID == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("committedDriverId",
			fmt.Errorf("assignment in %s status must have a driver", status))
	}
	if status == Pending && committedDriverID != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("committedDriverId",
			errors.New("pending assignment cannot have a driver"))
	}

	a := &Assignment{
		orderID:       orderID,
		candidates:    dedupe(candidates),
		status:        status,
		pickup:        pickup,
		dropoff:       dropoff,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}
	if committedDriverID != nil {
		id := *committedDriverID
		a.committedDriverID = &id
	}
	return a, nil
}

func (a *Assignment) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAssignmentIsNotConstructed
	}
	return nil
}

func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

// Candidates returns a copy of the offered driver ids, in selection order.
func (a *Assignment) Candidates() []kernel.UUID {
	ids := make([]kernel.UUID, len(a.candidates))
	copy(ids, a.candidates)
	return ids
}

// CommittedDriverID is nil until a candidate accepts.
func (a *Assignment) CommittedDriverID() *kernel.UUID {
	if a.committedDriverID == nil {
		return nil
	}
	id := *a.committedDriverID
	return &id
}

func (a *Assignment) Status() Status {
	return a.status
}

func (a *Assignment) Pickup() Stop {
	return a.pickup
}

func (a *Assignment) Dropoff() Stop {
	return a.dropoff
}

func (a *Assignment) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Assignment) UpdatedAt() time.Time {
	return a.updatedAt
}

// IsCandidate reports whether driverID was offered the job.
func (a *Assignment) IsCandidate(driverID kernel.UUID) bool {
	for _, c := range a.candidates {
		if c.IsEqual(driverID) {
			return true
		}
	}
	return false
}

// IsCommittedTo reports whether driverID won the claim.
func (a *Assignment) IsCommittedTo(driverID kernel.UUID) bool {
	return a.committedDriverID != nil && a.committedDriverID.IsEqual(driverID)
}

// Accept commits driverID.
//
// Returns:
//   - ErrAssignmentAlreadyClaimed if another driver already committed
//   - *errs.ForbiddenError if driverID is not a candidate
//   - *errs.ObjectNotFoundError if the assignment is closed
func (a *Assignment) Accept(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if a.status.IsClosed() {
		return errs.NewObjectNotFoundErrorWithCause("pending assignment", a.orderID.String(),
			fmt.Errorf("assignment is %s", a.status))
	}
	if a.committedDriverID != nil || a.status != Pending {
		return ErrAssignmentAlreadyClaimed
	}
	if !a.IsCandidate(driverID) {
		return errs.NewForbiddenError("driver "+driverID.String(), "accept delivery "+a.orderID.String())
	}

	a.committedDriverID = &driverID
	a.status = Accepted
	a.touch()
	return nil
}

// MarkPickedUp records that the committed driver collected the food.
func (a *Assignment) MarkPickedUp(driverID kernel.UUID) error {
	if !a.IsCommittedTo(driverID) {
		return errs.NewForbiddenError("driver "+driverID.String(), "pick up delivery "+a.orderID.String())
	}
	if a.status != Accepted {
		return errs.NewIllegalTransitionError("assignment", a.status.String(), PickedUp.String())
	}

	a.status = PickedUp
	a.touch()
	return nil
}

// Complete closes a committed assignment as delivered.
func (a *Assignment) Complete() error {
	if a.status != Accepted && a.status != PickedUp {
		return errs.NewIllegalTransitionError("assignment", a.status.String(), Delivered.String())
	}

	a.status = Delivered
	a.touch()
	return nil
}

// Cancel closes an open assignment. The committed driver, if any, stays
// recorded so the release can free it.
func (a *Assignment) Cancel() error {
	if a.status.IsClosed() {
		return errs.NewIllegalTransitionError("assignment", a.status.String(), Cancelled.String())
	}

	a.status = Cancelled
	a.touch()
	return nil
}

func (a *Assignment) touch() {
	a.updatedAt = time.Now().UTC()
}

func (a *Assignment) setStop(name string, stop Stop) error {
	if strings.TrimSpace(stop.Address) == "" {
		return errs.NewValueIsRequiredError(name + "Address")
	}
	if stop.Location != nil {
		return stop.Location.Validate()
	}
	return nil
}

func dedupe(ids []kernel.UUID) []kernel.UUID {
	seen := make(map[kernel.UUID]struct{}, len(ids))
	unique := make([]kernel.UUID, 0, len(ids))
	for _, id := range ids {
		if id.Validate() != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

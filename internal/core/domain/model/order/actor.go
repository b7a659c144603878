package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Role is the closed set of parties that may act on an order.
type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleRestaurant
	RoleDriver
	RoleAdmin
	// RoleSystem is the service itself: payment outcomes, dispatch and claim commits.
	RoleSystem
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:    "unknown",
		RoleCustomer:   "customer",
		RoleRestaurant: "restaurant",
		RoleDriver:     "driver",
		RoleAdmin:      "admin",
		RoleSystem:     "system",
	}
}

// ParseRole maps a token role claim to a Role. RoleSystem is never accepted
// from outside the process.
func ParseRole(s string) (Role, error) {
	for role, name := range getRoleStrings() {
		if role != RoleUnknown && role != RoleSystem && name == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

func (r Role) Validate() error {
	if r <= RoleUnknown || r > RoleSystem {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// Actor is the authenticated party behind a state change.
type Actor struct {
	role Role
	id   kernel.UUID
}

// SystemActor is used by the service for transitions it drives itself.
var SystemActor = Actor{role: RoleSystem}

// NewActor builds an external actor. Every non-system actor carries an identity.
func NewActor(role Role, id kernel.UUID) (Actor, error) {
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	if role == RoleSystem {
		return Actor{}, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("system actor cannot be constructed"))
	}
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{role: role, id: id}, nil
}

func (a Actor) Role() Role {
	return a.role
}

// ID is the zero UUID for SystemActor.
func (a Actor) ID() kernel.UUID {
	return a.id
}

func (a Actor) String() string {
	if a.role == RoleSystem {
		return a.role.String()
	}
	return fmt.Sprintf("%s %s", a.role, a.id)
}

package errs

import "fmt"

// ForbiddenError reports an actor attempting an operation its role or
// ownership does not permit.
type ForbiddenError struct {
	Actor  string
	Action string
	Cause  error
}

func NewForbiddenError(actor, action string) *ForbiddenError {
	return &ForbiddenError{
		Actor:  actor,
		Action: action,
	}
}

func NewForbiddenErrorWithCause(actor, action string, cause error) *ForbiddenError {
	return &ForbiddenError{
		Actor:  actor,
		Action: action,
		Cause:  cause,
	}
}

func (e *ForbiddenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s may not %s (cause: %v)", ErrForbidden, e.Actor, e.Action, e.Cause)
	}
	return fmt.Sprintf("%s: %s may not %s", ErrForbidden, e.Actor, e.Action)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// IllegalTransitionError reports a requested state change that is not a
// direct edge of the entity's lifecycle.
type IllegalTransitionError struct {
	Entity string
	From   string
	To     string
}

func NewIllegalTransitionError(entity, from, to string) *IllegalTransitionError {
	return &IllegalTransitionError{
		Entity: entity,
		From:   from,
		To:     to,
	}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move from %s to %s", ErrIllegalTransition, e.Entity, e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// UpstreamUnavailableError reports a collaborator that was unreachable,
// timed out, or answered with a server-side failure.
type UpstreamUnavailableError struct {
	Service string
	Cause   error
}

func NewUpstreamUnavailableError(service string) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{Service: service}
}

func NewUpstreamUnavailableErrorWithCause(service string, cause error) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{
		Service: service,
		Cause:   cause,
	}
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrUpstreamUnavailable, e.Service, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrUpstreamUnavailable, e.Service)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return ErrUpstreamUnavailable
}

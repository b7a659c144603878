package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// OrderFilter narrows a listing. Nil fields do not filter.
type OrderFilter struct {
	CustomerID    *kernel.UUID
	RestaurantID  *kernel.UUID
	Status        *order.Status
	PaymentStatus *order.PaymentStatus
}

// ListOrdersQuery pages through orders visible to an actor, newest first.
// The handler adds the actor's own scope on top of the filter, so a customer
// asking for another customer's orders gets an empty page.
type ListOrdersQuery struct {
	actor  order.Actor
	filter OrderFilter
	page   int
	limit  int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery validates paging. A zero page or limit selects the
// first page or DefaultPageLimit.
func NewListOrdersQuery(actor order.Actor, filter OrderFilter, page, limit int) (ListOrdersQuery, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}

	var errList []error
	if err := actor.Role().Validate(); err != nil {
		errList = append(errList, err)
	}
	if page < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded"))
	}
	if limit < 1 || limit > MaxPageLimit {
		errList = append(errList, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageLimit))
	}
	if filter.Status != nil {
		errList = append(errList, filter.Status.Validate())
	}
	if filter.PaymentStatus != nil {
		errList = append(errList, filter.PaymentStatus.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return ListOrdersQuery{}, err
	}

	return ListOrdersQuery{
		actor:  actor,
		filter: filter,
		page:   page,
		limit:  limit,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q ListOrdersQuery) Actor() order.Actor {
	return q.actor
}

func (q ListOrdersQuery) Filter() OrderFilter {
	return q.filter
}

func (q ListOrdersQuery) Page() int {
	return q.page
}

func (q ListOrdersQuery) Limit() int {
	return q.limit
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// ListOrdersQueryResponse is one page of orders.
type ListOrdersQueryResponse struct {
	Orders []OrderView `json:"orders"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
	Total  int64       `json:"total"`
}

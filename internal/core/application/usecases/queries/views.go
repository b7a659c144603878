package queries

import (
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderView is the read model of an order. Money amounts are decimal strings
// with two fraction digits.
type OrderView struct {
	ID               string                `json:"id"`
	CustomerID       string                `json:"customerId"`
	RestaurantOrders []RestaurantOrderView `json:"restaurantOrders"`
	Subtotal         string                `json:"subtotal"`
	DeliveryFee      string                `json:"deliveryFee"`
	Tax              string                `json:"tax"`
	Total            string                `json:"total"`
	Delivery         DeliveryView          `json:"delivery"`
	PaymentMethod    string                `json:"paymentMethod"`
	Status           string                `json:"status"`
	PaymentStatus    string                `json:"paymentStatus"`
	DriverID         *string               `json:"driverId,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

type RestaurantOrderView struct {
	RestaurantID string         `json:"restaurantId"`
	Items        []LineItemView `json:"items"`
	Subtotal     string         `json:"subtotal"`
}

type LineItemView struct {
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
}

type DeliveryView struct {
	Address       string `json:"address"`
	Instructions  string `json:"instructions,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
}

// AssignmentView is the read model of a delivery assignment.
type AssignmentView struct {
	OrderID            string    `json:"orderId"`
	Status             string    `json:"status"`
	CandidateDriverIDs []string  `json:"candidateDriverIds"`
	CommittedDriverID  *string   `json:"committedDriverId,omitempty"`
	Pickup             StopView  `json:"pickup"`
	Dropoff            StopView  `json:"dropoff"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type StopView struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// NewOrderView maps an order aggregate, as returned by the commands.
func NewOrderView(o *order.Order) OrderView {
	view := OrderView{
		ID:            o.ID().String(),
		CustomerID:    o.CustomerID().String(),
		Subtotal:      o.Totals().Subtotal().String(),
		DeliveryFee:   o.Totals().DeliveryFee().String(),
		Tax:           o.Totals().Tax().String(),
		Total:         o.Totals().Total().String(),
		Delivery:      DeliveryView(o.Delivery()),
		PaymentMethod: string(o.PaymentMethod()),
		Status:        o.Status().String(),
		PaymentStatus: o.PaymentStatus().String(),
		DriverID:      uuidString(o.DriverID()),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}

	for _, ro := range o.RestaurantOrders() {
		rv := RestaurantOrderView{
			RestaurantID: ro.RestaurantID().String(),
			Subtotal:     ro.Subtotal().String(),
		}
		for _, li := range ro.Items() {
			rv.Items = append(rv.Items, LineItemView{
				ItemID:    li.ItemID(),
				Name:      li.Name(),
				UnitPrice: li.UnitPrice().String(),
				Quantity:  li.Quantity(),
				Amount:    li.Amount().String(),
			})
		}
		view.RestaurantOrders = append(view.RestaurantOrders, rv)
	}

	return view
}

// NewAssignmentView maps an assignment aggregate.
func NewAssignmentView(a *delivery.Assignment) AssignmentView {
	candidates := make([]string, 0, len(a.Candidates()))
	for _, id := range a.Candidates() {
		candidates = append(candidates, id.String())
	}

	return AssignmentView{
		OrderID:            a.OrderID().String(),
		Status:             a.Status().String(),
		CandidateDriverIDs: candidates,
		CommittedDriverID:  uuidString(a.CommittedDriverID()),
		Pickup:             stopView(a.Pickup()),
		Dropoff:            stopView(a.Dropoff()),
		CreatedAt:          a.CreatedAt(),
		UpdatedAt:          a.UpdatedAt(),
	}
}

// DriverView is the profile of a delivery person.
type DriverView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	VehicleType   string    `json:"vehicleType"`
	VehicleNumber string    `json:"vehicleNumber"`
	Lat           *float64  `json:"lat,omitempty"`
	Lng           *float64  `json:"lng,omitempty"`
	Available     bool      `json:"available"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewDriverView(d *driver.Driver) DriverView {
	view := DriverView{
		ID:            d.ID().String(),
		Name:          d.Name(),
		Phone:         d.Phone(),
		Email:         d.Email(),
		VehicleType:   d.Vehicle().Type,
		VehicleNumber: d.Vehicle().Number,
		Available:     d.IsAvailable(),
		UpdatedAt:     d.UpdatedAt(),
	}
	if loc, ok := d.Location(); ok {
		lat, lng := loc.Lat(), loc.Lng()
		view.Lat, view.Lng = &lat, &lng
	}
	return view
}

func stopView(stop delivery.Stop) StopView {
	view := StopView{Address: stop.Address}
	if stop.Location != nil {
		lat, lng := stop.Location.Lat(), stop.Location.Lng()
		view.Lat, view.Lng = &lat, &lng
	}
	return view
}

func uuidString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

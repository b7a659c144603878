package http

import (
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

type orderItemRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type restaurantOrderRequest struct {
	RestaurantID string             `json:"restaurantId" validate:"required,uuid"`
	Items        []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createOrderRequest struct {
	RestaurantOrders     []restaurantOrderRequest `json:"restaurantOrders" validate:"required,min=1,dive"`
	DeliveryAddress      string                   `json:"deliveryAddress" validate:"required"`
	DeliveryInstructions string                   `json:"deliveryInstructions"`
	CustomerName         string                   `json:"customerName"`
	CustomerEmail        string                   `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone        string                   `json:"customerPhone"`
	PaymentMethod        string                   `json:"paymentMethod" validate:"required,oneof=card online_banking mobile_wallet"`
}

func (r createOrderRequest) restaurantOrders() ([]commands.RestaurantOrderInput, error) {
	inputs := make([]commands.RestaurantOrderInput, 0, len(r.RestaurantOrders))
	for _, ro := range r.RestaurantOrders {
		restaurantID, err := kernel.UUIDFromString(ro.RestaurantID)
		if err != nil {
			return nil, err
		}

		items := make([]commands.OrderItemInput, 0, len(ro.Items))
		for _, item := range ro.Items {
			items = append(items, commands.OrderItemInput{ItemID: item.ItemID, Quantity: item.Quantity})
		}
		inputs = append(inputs, commands.RestaurantOrderInput{RestaurantID: restaurantID, Items: items})
	}
	return inputs, nil
}

func (r createOrderRequest) delivery() order.DeliveryDetails {
	return order.DeliveryDetails{
		Address:       r.DeliveryAddress,
		Instructions:  r.DeliveryInstructions,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
	}
}

type changeOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type registerDriverRequest struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	VehicleType   string `json:"vehicleType" validate:"required"`
	VehicleNumber string `json:"vehicleNumber" validate:"required"`
	Address       string `json:"address"`
}

func (r registerDriverRequest) vehicle() driver.Vehicle {
	return driver.Vehicle{Type: r.VehicleType, Number: r.VehicleNumber}
}

type driverAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type driverLocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

// Dispatch outcomes.
const (
	dispatchStatusDispatched        = "dispatched"
	dispatchStatusNoDriverAvailable = "no_driver_available"
)

type dispatchResponse struct {
	Status     string                  `json:"status"`
	Assignment *queries.AssignmentView `json:"assignment,omitempty"`
}

func newDispatchResponse(a *delivery.Assignment) dispatchResponse {
	view := queries.NewAssignmentView(a)
	return dispatchResponse{Status: dispatchStatusDispatched, Assignment: &view}
}

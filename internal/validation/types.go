package validation

// Item represents a single order line item.
type Item struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"` // must be >= 1
}

// PlaceOrderRequest is the payload for POST /orders
type PlaceOrderRequest struct {
	RestaurantName string `json:"restaurantName" validate:"required"` // restaurant to notify
	Items          []Item `json:"items,omitempty" validate:"dive"`    // optional order lines
}

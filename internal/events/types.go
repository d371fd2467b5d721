package events

import (
	"encoding/json"
	"fmt"
)

// Event source and detail types, matching the bus rule that routes
// order_placed events to the notifier.
const (
	Source                       = "big-mouth"
	DetailTypeOrderPlaced        = "order_placed"
	DetailTypeRestaurantNotified = "restaurant_notified"
)

// Envelope is the EventBridge envelope as delivered to the notifier queue.
type Envelope struct {
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
}

// OrderEvent is the order detail carried inside an envelope. Raw holds the
// original detail JSON so incidental fields survive the trip from
// order_placed to restaurant_notified unmodified.
type OrderEvent struct {
	OrderID        string `json:"orderId" validate:"required"`
	RestaurantName string `json:"restaurantName" validate:"required"`

	Raw json.RawMessage `json:"-"`
}

// ParseOrder decodes the envelope detail into an OrderEvent, preserving the
// raw detail bytes.
func ParseOrder(env Envelope) (OrderEvent, error) {
	var order OrderEvent
	if err := json.Unmarshal(env.Detail, &order); err != nil {
		return OrderEvent{}, fmt.Errorf("unmarshal order detail: %w", err)
	}
	order.Raw = append(json.RawMessage(nil), env.Detail...)
	return order, nil
}

// DetailJSON returns the order detail as a JSON string: the original bytes
// when the event came off the wire, a fresh encoding otherwise.
func (o OrderEvent) DetailJSON() (string, error) {
	if len(o.Raw) > 0 {
		return string(o.Raw), nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshal order detail: %w", err)
	}
	return string(b), nil
}

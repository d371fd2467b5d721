package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/bigmouth/restaurant-notifier/internal/events"
)

// NotificationTopic is the channel restaurants subscribe to.
type NotificationTopic interface {
	Publish(ctx context.Context, message string) error
}

// FactBus receives the derived restaurant_notified event.
type FactBus interface {
	Emit(ctx context.Context, source, detailType, detail string) error
}

// Dispatcher notifies the restaurant of a placed order and emits the
// restaurant_notified fact. It is the work function handed to the engine:
// it performs its two side effects in order, retries nothing itself, and
// lets any failure propagate so the claim is released and the delivery
// retried.
type Dispatcher struct {
	topic NotificationTopic
	bus   FactBus
}

// NewDispatcher returns a Dispatcher bound to a notification topic and an
// event bus.
func NewDispatcher(topic NotificationTopic, bus FactBus) *Dispatcher {
	return &Dispatcher{
		topic: topic,
		bus:   bus,
	}
}

// Notify publishes the order to the notification topic, then emits the
// restaurant_notified fact carrying the same detail, and returns the order
// id as the cached result for duplicate deliveries.
func (d *Dispatcher) Notify(ctx context.Context, order events.OrderEvent) (string, error) {
	detail, err := order.DetailJSON()
	if err != nil {
		return "", err
	}

	if err := d.topic.Publish(ctx, detail); err != nil {
		return "", fmt.Errorf("notify restaurant: %w", err)
	}
	log.Printf("[notify] notified restaurant [%s] of order [%s]", order.RestaurantName, order.OrderID)

	if err := d.bus.Emit(ctx, events.Source, events.DetailTypeRestaurantNotified, detail); err != nil {
		return "", fmt.Errorf("emit %s: %w", events.DetailTypeRestaurantNotified, err)
	}
	log.Printf("[notify] published '%s' event for order [%s]", events.DetailTypeRestaurantNotified, order.OrderID)

	return order.OrderID, nil
}

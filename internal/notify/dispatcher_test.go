package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bigmouth/restaurant-notifier/internal/events"
)

type fakeTopic struct {
	messages []string
	err      error
}

func (f *fakeTopic) Publish(ctx context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

type emitted struct {
	source, detailType, detail string
}

type fakeBus struct {
	emits []emitted
	err   error
}

func (f *fakeBus) Emit(ctx context.Context, source, detailType, detail string) error {
	if f.err != nil {
		return f.err
	}
	f.emits = append(f.emits, emitted{source, detailType, detail})
	return nil
}

func TestNotify_SendsThenEmits(t *testing.T) {
	topic := &fakeTopic{}
	bus := &fakeBus{}
	d := NewDispatcher(topic, bus)

	order := events.OrderEvent{
		OrderID:        "order-1",
		RestaurantName: "Fangtasia",
		Raw:            json.RawMessage(`{"orderId":"order-1","restaurantName":"Fangtasia","items":["blood","tru:blood"]}`),
	}

	result, err := d.Notify(context.Background(), order)
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if result != "order-1" {
		t.Fatalf("expected result order-1, got %q", result)
	}

	if len(topic.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(topic.messages))
	}
	if !strings.Contains(topic.messages[0], "order-1") || !strings.Contains(topic.messages[0], "Fangtasia") {
		t.Fatalf("notification missing order detail: %s", topic.messages[0])
	}

	if len(bus.emits) != 1 {
		t.Fatalf("expected 1 emitted fact, got %d", len(bus.emits))
	}
	e := bus.emits[0]
	if e.source != events.Source || e.detailType != events.DetailTypeRestaurantNotified {
		t.Fatalf("unexpected envelope: %+v", e)
	}
	if e.detail != string(order.Raw) {
		t.Fatalf("emitted detail must carry the original order detail, got %s", e.detail)
	}
}

func TestNotify_NotificationFailureStopsEmission(t *testing.T) {
	topic := &fakeTopic{err: errors.New("topic unavailable")}
	bus := &fakeBus{}
	d := NewDispatcher(topic, bus)

	_, err := d.Notify(context.Background(), events.OrderEvent{OrderID: "order-1", RestaurantName: "Fangtasia"})
	if err == nil {
		t.Fatal("expected notification failure to propagate")
	}
	if len(bus.emits) != 0 {
		t.Fatalf("fact must not be emitted when notification fails, got %d", len(bus.emits))
	}
}

func TestNotify_EmissionFailurePropagates(t *testing.T) {
	topic := &fakeTopic{}
	bus := &fakeBus{err: errors.New("bus unavailable")}
	d := NewDispatcher(topic, bus)

	_, err := d.Notify(context.Background(), events.OrderEvent{OrderID: "order-1", RestaurantName: "Fangtasia"})
	if err == nil {
		t.Fatal("expected emission failure to propagate")
	}
	// the notification already went out; the engine releases the claim and a
	// redelivery re-attempts the full work
	if len(topic.messages) != 1 {
		t.Fatalf("expected the notification attempt, got %d", len(topic.messages))
	}
}

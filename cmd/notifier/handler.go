package main

import (
	"context"
	"encoding/json"
	"log"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/bigmouth/restaurant-notifier/internal/events"
	"github.com/bigmouth/restaurant-notifier/internal/idempotency"
	"github.com/bigmouth/restaurant-notifier/internal/notify"
	"github.com/bigmouth/restaurant-notifier/internal/validation"
)

// OperationNotifyRestaurant names the logical operation for key derivation.
// Changing it invalidates every cached result, so treat it as wire format.
const OperationNotifyRestaurant = "notify-restaurant"

// Handler consumes order_placed envelopes delivered through the notifier
// queue and runs the dispatcher through the idempotent engine.
type Handler struct {
	engine     *idempotency.Engine
	dispatcher *notify.Dispatcher
	validate   *validatorv10.Validate
}

// NewHandler wires a Handler.
func NewHandler(engine *idempotency.Engine, dispatcher *notify.Dispatcher) *Handler {
	return &Handler{
		engine:     engine,
		dispatcher: dispatcher,
		validate:   validation.New(),
	}
}

// Handle receives an SQS batch event and processes each record. A retryable
// failure returns an error so the delivery is retried; records already
// processed in the batch are safe to redeliver because the engine suppresses
// their side effects.
func (h *Handler) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := h.processRecord(ctx, rec); err != nil {
			log.Printf("[notifier] error: %v", err)
			return err
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var env events.Envelope
	if err := json.Unmarshal([]byte(rec.Body), &env); err != nil {
		// Poison message; retrying can never succeed. The queue's DLQ policy
		// is the backstop for these.
		log.Printf("[notifier] dropping undecodable message %s: %v", rec.MessageId, err)
		return nil
	}

	if env.DetailType != events.DetailTypeOrderPlaced {
		log.Printf("[notifier] skipping unexpected detail type %q", env.DetailType)
		return nil
	}

	order, err := events.ParseOrder(env)
	if err == nil {
		err = h.validate.Struct(order)
	}
	if err != nil {
		log.Printf("[notifier] dropping malformed order event: %v", err)
		return nil
	}

	// Validation above guarantees an orderId, so key derivation cannot fail
	// here; any engine error is in-progress contention, a store outage or a
	// downstream failure, and all of those are retryable.
	result, err := h.engine.Run(ctx, OperationNotifyRestaurant, order, h.dispatcher.Notify)
	if err != nil {
		return err
	}

	log.Printf("[notifier] processed order=%s", result)
	return nil
}

package main

import (
	"context"
	"log"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/bigmouth/restaurant-notifier/internal/aws"
	"github.com/bigmouth/restaurant-notifier/internal/config"
	"github.com/bigmouth/restaurant-notifier/internal/idempotency"
	"github.com/bigmouth/restaurant-notifier/internal/metrics"
	"github.com/bigmouth/restaurant-notifier/internal/notify"
)

func buildHandler(ctx context.Context) (*Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		return nil, err
	}

	store := idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable)
	recorder := metrics.NewRecorder(clients.CloudWatch, "RestaurantNotifier", cfg.ServiceName)
	engine := idempotency.NewEngine(store, cfg.InProgressTTL, cfg.CompletedTTL, recorder)

	topic := aws.NewTopic(clients.SNS, cfg.TopicARN)
	bus := aws.NewBus(clients.EventBridge, cfg.BusName)
	dispatcher := notify.NewDispatcher(topic, bus)

	return NewHandler(engine, dispatcher), nil
}

func main() {
	ctx := context.Background()

	h, err := buildHandler(ctx)
	if err != nil {
		log.Fatalf("failed to init notifier: %v", err)
	}

	// If RUN_LOCAL=true, replay a single envelope for local testing instead
	// of starting the Lambda runtime.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_EVENT_BODY")
		if body == "" {
			body = `{"source":"big-mouth","detail-type":"order_placed","detail":{"orderId":"local-order-1","restaurantName":"Fangtasia"}}`
		}
		ev := lambdaevents.SQSEvent{
			Records: []lambdaevents.SQSMessage{
				{MessageId: "local-1", Body: body},
			},
		}
		if err := h.Handle(ctx, ev); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(h.Handle)
}

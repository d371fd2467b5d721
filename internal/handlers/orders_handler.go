package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bigmouth/restaurant-notifier/internal/aws"
	"github.com/bigmouth/restaurant-notifier/internal/events"
	"github.com/bigmouth/restaurant-notifier/internal/validation"
)

// HandlerConfig groups dependencies for the orders handler.
type HandlerConfig struct {
	EventBridgeClient aws.EventBridgeAPI
	SQSClient         aws.SQSAPI
	BusName           string
	QueueURL          string // set without a bus to inject envelopes straight into the notifier queue
}

// RegisterOrderRoutes registers the order placement API. The handler is a
// pure producer: it validates the order, mints an id and puts order_placed
// on the bus. Notification and idempotency live entirely downstream in the
// notifier.
func RegisterOrderRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	bus := aws.NewBus(cfg.EventBridgeClient, cfg.BusName)

	var publisher *aws.Publisher
	if cfg.QueueURL != "" {
		publisher = aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	}

	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.PlaceOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		orderID := uuid.NewString()

		detail := map[string]interface{}{
			"orderId":        orderID,
			"restaurantName": req.RestaurantName,
		}
		if len(req.Items) > 0 {
			detail["items"] = req.Items
		}
		detailBytes, err := json.Marshal(detail)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "encode_failed", "detail": err.Error()})
			return
		}

		if publisher != nil {
			// Local path: wrap the detail in the envelope EventBridge would
			// deliver and enqueue it directly.
			env := events.Envelope{
				Source:     events.Source,
				DetailType: events.DetailTypeOrderPlaced,
				Detail:     detailBytes,
			}
			body, err := json.Marshal(env)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "encode_failed", "detail": err.Error()})
				return
			}
			if err := publisher.SendEnvelope(ctx, string(body), map[string]string{"order_id": orderID}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
				return
			}
		} else {
			if err := bus.Emit(ctx, events.Source, events.DetailTypeOrderPlaced, string(detailBytes)); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "emit_failed", "detail": err.Error()})
				return
			}
		}

		c.JSON(http.StatusAccepted, gin.H{"orderId": orderID})
	})
}

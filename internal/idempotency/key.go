package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bigmouth/restaurant-notifier/internal/events"
)

// ErrNoIdentity indicates the event is missing the fields that define its
// identity. Not retryable: redelivering the same malformed event can never
// succeed.
var ErrNoIdentity = errors.New("event has no identity fields")

// DeriveKey computes the idempotency key for an operation applied to an
// order event. Only identity fields participate, so two deliveries of the
// same business event derive the same key no matter what incidental
// metadata differs between them.
func DeriveKey(operation string, ev events.OrderEvent) (string, error) {
	if operation == "" {
		return "", errors.New("operation name required")
	}
	if ev.OrderID == "" {
		return "", fmt.Errorf("%w: orderId is empty", ErrNoIdentity)
	}
	sum := sha256.Sum256([]byte(operation + "#" + ev.OrderID))
	return hex.EncodeToString(sum[:]), nil
}

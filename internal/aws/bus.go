package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// Bus wraps an EventBridge client and a bus name.
type Bus struct {
	EventBridge EventBridgeAPI
	BusName     string
}

// NewBus returns a Bus bound to an event bus name.
func NewBus(ebClient EventBridgeAPI, busName string) *Bus {
	return &Bus{
		EventBridge: ebClient,
		BusName:     busName,
	}
}

// Emit puts a single event onto the bus. detail should be a JSON string.
// PutEvents reports per-entry failures without an error, so the failed entry
// count is checked explicitly.
func (b *Bus) Emit(ctx context.Context, source, detailType, detail string) error {
	input := &eventbridge.PutEventsInput{
		Entries: []ebtypes.PutEventsRequestEntry{
			{
				Source:       &source,
				DetailType:   &detailType,
				Detail:       &detail,
				EventBusName: &b.BusName,
			},
		},
	}
	out, err := b.EventBridge.PutEvents(ctx, input)
	if err != nil {
		return fmt.Errorf("put events: %w", err)
	}
	if out.FailedEntryCount > 0 {
		for _, e := range out.Entries {
			if e.ErrorCode != nil {
				return fmt.Errorf("put events entry failed: %s", *e.ErrorCode)
			}
		}
		return fmt.Errorf("put events: %d entries failed", out.FailedEntryCount)
	}
	return nil
}

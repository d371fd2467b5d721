package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Topic wraps an SNS client and a topic ARN.
type Topic struct {
	SNS      SNSAPI
	TopicARN string
}

// NewTopic returns a Topic bound to a topic ARN.
func NewTopic(snsClient SNSAPI, topicARN string) *Topic {
	return &Topic{
		SNS:      snsClient,
		TopicARN: topicARN,
	}
}

// Publish sends a message to the topic. message should be a JSON string.
func (t *Topic) Publish(ctx context.Context, message string) error {
	input := &sns.PublishInput{
		TopicArn: &t.TopicARN,
		Message:  &message,
	}
	_, err := t.SNS.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

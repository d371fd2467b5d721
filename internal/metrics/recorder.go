package metrics

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/bigmouth/restaurant-notifier/internal/aws"
)

// Metric names emitted by the engine.
const (
	MetricNotificationProcessed = "NotificationProcessed"
	MetricDuplicateSuppressed   = "DuplicateSuppressed"
	MetricWorkFailed            = "WorkFailed"
)

// Recorder emits count metrics to CloudWatch. A nil Recorder is a no-op so
// local runs and tests can leave metrics unwired.
type Recorder struct {
	client    aws.CloudWatchAPI
	namespace string
	service   string
}

// NewRecorder returns a Recorder publishing under the given namespace with a
// service dimension.
func NewRecorder(client aws.CloudWatchAPI, namespace, service string) *Recorder {
	return &Recorder{
		client:    client,
		namespace: namespace,
		service:   service,
	}
}

// Count emits a single Count=1 datum. Metric failures are logged and
// swallowed: observability must never affect the processing protocol.
func (r *Recorder) Count(ctx context.Context, name string) {
	if r == nil {
		return
	}
	one := 1.0
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &r.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: strPtr("Service"), Value: &r.service},
				},
			},
		},
	}
	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		log.Printf("[metrics] put metric data failed for %s: %v", name, err)
	}
}

func strPtr(s string) *string { return &s }

package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

type DispatchCollector struct {
	dispatches       metric.Int64Counter
	providerDuration metric.Float64Histogram
	region           attribute.KeyValue
}

func NewDispatchCollector(meter metric.Meter, region string) (*DispatchCollector, error) {
	dispatches, err := meter.Int64Counter(
		"push.relay.dispatches",
		metric.WithDescription("Notification requests by terminal outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	providerDuration, err := meter.Float64Histogram(
		"push.relay.provider.duration",
		metric.WithDescription("Time spent waiting on the push provider"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchCollector{
		dispatches:       dispatches,
		providerDuration: providerDuration,
		region:           attribute.String("region", region),
	}, nil
}

// Meter returns the named meter from provider.
func Meter(provider metric.MeterProvider) metric.Meter {
	return provider.Meter(meterName)
}

// ObserveOutcome counts one request that ended in outcome.
func (c *DispatchCollector) ObserveOutcome(ctx context.Context, source dispatch.Source, outcome dispatch.Outcome) {
	c.dispatches.Add(ctx, 1, metric.WithAttributes(
		c.region,
		attribute.String("source", string(source)),
		attribute.String("outcome", string(outcome)),
	))
}

// ObserveProviderCall records how long a single provider call took.
func (c *DispatchCollector) ObserveProviderCall(ctx context.Context, outcome dispatch.Outcome, elapsed time.Duration) {
	c.providerDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		c.region,
		attribute.String("outcome", string(outcome)),
	))
}

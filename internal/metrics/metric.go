// Package metrics exposes dispatch counters and provider latency through
// OpenTelemetry, exported in Prometheus format.
package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/tinywideclouds/go-push-relay"

// NewMeterProvider wires an SDK meter provider to the Prometheus exporter,
// which registers with the default Prometheus registry.
func NewMeterProvider() (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)
	return provider, nil
}

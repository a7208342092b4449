// Package observability exports the publisher's counters to Prometheus.
package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/odit-bit/ddsclog/internal/monolith"
)

// NewMeterProvider creates a meter provider backed by its own Prometheus
// registry, and the handler serving that registry.
func NewMeterProvider() (*sdkmetric.MeterProvider, http.Handler, error) {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return provider, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

// Module mounts the metrics handler on /metrics.
type Module struct {
	Handler http.Handler
}

var _ monolith.Module = (*Module)(nil)

func (mod *Module) Start(_ context.Context, mono monolith.Monolith) error {
	mono.Mux().Method(http.MethodGet, "/metrics", mod.Handler)
	return nil
}

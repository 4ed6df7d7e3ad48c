// Package metrics exposes an OpenTelemetry meter whose readings are exported
// in Prometheus format. When disabled, the meter is a no-op and the exporter
// endpoint reports 503.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

const meterName = "scrivener"

// System provides the application meter and its exporter endpoint.
type System interface {
	// Start registers a shutdown hook that flushes and stops the meter provider.
	Start(lc *lifecycle.Coordinator) error
	Meter() metric.Meter
	Handler() http.Handler
}

type service struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	registry *prom.Registry
	logger   *slog.Logger
}

// New creates the metrics system. A disabled config yields a no-op meter.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "metrics")

	if !cfg.Enabled {
		logger.Debug("metrics disabled, using no-op meter")
		return &service{
			meter:  noop.NewMeterProvider().Meter(meterName),
			logger: logger,
		}, nil
	}

	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &service{
		meter:    provider.Meter(meterName),
		provider: provider,
		registry: registry,
		logger:   logger,
	}, nil
}

func (s *service) Start(lc *lifecycle.Coordinator) error {
	if s.provider == nil {
		return nil
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.provider.Shutdown(context.Background()); err != nil {
			s.logger.Error("meter provider shutdown failed", "error", err)
		}
	})

	return nil
}

func (s *service) Meter() metric.Meter {
	return s.meter
}

func (s *service) Handler() http.Handler {
	if s.registry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

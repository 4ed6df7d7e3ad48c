// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, artifact storage, metrics) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/pkg/lifecycle"
	"github.com/JaimeStill/scrivener/pkg/metrics"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Metrics   metrics.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	store := storage.New(&cfg.Storage, afero.NewOsFs(), logger)

	meter, err := metrics.New(&cfg.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("metrics init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
		Metrics:   meter,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// The storage root exists once Start returns; it is removed at shutdown.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Metrics.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("metrics start failed: %w", err)
	}
	return nil
}

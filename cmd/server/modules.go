package main

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/scrivener/internal/artifacts"
	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/extraction"
	"github.com/JaimeStill/scrivener/internal/infrastructure"
	"github.com/JaimeStill/scrivener/internal/site"
	"github.com/JaimeStill/scrivener/pkg/flash"
	"github.com/JaimeStill/scrivener/pkg/handlers"
	"github.com/JaimeStill/scrivener/pkg/ocr/tesseract"
	"github.com/JaimeStill/scrivener/pkg/routes"
	"github.com/JaimeStill/scrivener/pkg/spell"
	"github.com/JaimeStill/scrivener/pkg/web"
	"github.com/JaimeStill/scrivener/web/app"
)

type Modules struct {
	Site *site.Handler
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	engine := tesseract.New(&cfg.OCR, infra.Logger)

	model, err := spell.New(&cfg.Spell, infra.Logger)
	if err != nil {
		return nil, fmt.Errorf("spell model: %w", err)
	}

	ext, err := extraction.New(engine, model, cfg.OCR.TimeoutDuration(), infra.Metrics.Meter(), infra.Logger)
	if err != nil {
		return nil, fmt.Errorf("extraction: %w", err)
	}

	store, err := flash.New(&cfg.Site.Flash, infra.Logger)
	if err != nil {
		return nil, fmt.Errorf("flash: %w", err)
	}

	views, err := app.Templates(cfg.Site.BasePath, cfg.Version, site.Views)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	handler, err := site.NewHandler(
		ext,
		artifacts.New(infra.Storage, infra.Logger),
		store,
		views,
		infra.Metrics.Meter(),
		infra.Logger,
		cfg.Site.MaxUploadSizeBytes(),
	)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	return &Modules{Site: handler}, nil
}

func (m *Modules) Mount(router *web.Router) {
	router.Mount(m.Site.Routes())
	router.SetFallback(m.Site.NotFound)
}

func buildRouter(infra *infrastructure.Infrastructure) *web.Router {
	router := web.NewRouter()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		if infra.Storage.Root() == "" {
			handlers.RespondError(w, infra.Logger, http.StatusServiceUnavailable, fmt.Errorf("storage root unavailable"))
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	router.Handle("GET /metrics", infra.Metrics.Handler())

	router.Mount(routes.Group{Routes: app.PublicRoutes()})

	return router
}

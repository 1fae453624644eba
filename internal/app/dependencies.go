package app

import (
	"context"
	"errors"

	"github.com/klokku/multical/internal/config"
	"github.com/klokku/multical/internal/event_bus"
	"github.com/klokku/multical/internal/utils"
	"github.com/klokku/multical/pkg/google"
	"github.com/klokku/multical/pkg/ics"
	"github.com/klokku/multical/pkg/layout"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	Registry        *registry.Registry
	RegistryHandler *registry.Handler

	LayoutEngine  *layout.Engine
	LayoutService *layout.Service
	LayoutHandler *layout.Handler

	IcsHandler *ics.Handler

	// GoogleClient is nil until an account is connected.
	GoogleClient  google.Client
	GoogleHandler *google.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, cfg config.Application, bus *event_bus.EventBus, reg *registry.Registry) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = bus
	deps.Clock = utils.SystemClock{}

	deps.Registry = reg
	deps.RegistryHandler = registry.NewHandler(reg)

	deps.LayoutEngine = layout.NewEngine(cfg.Layout.Subdivisions)
	deps.LayoutService = layout.NewService(reg, deps.LayoutEngine)
	deps.LayoutHandler = layout.NewHandler(deps.LayoutService, deps.Clock)

	deps.IcsHandler = ics.NewHandler(reg, deps.Clock)

	if client, err := google.NewService(ctx, cfg.Google); err == nil {
		deps.GoogleClient = client
	} else if errors.Is(err, google.ErrUnauthenticated) {
		log.Info("Google Calendar not connected")
	} else {
		log.Warnf("Google Calendar unavailable: %v", err)
	}
	deps.GoogleHandler = google.NewHandler(deps.GoogleClient, reg)

	return deps
}

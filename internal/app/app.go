package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/multical/internal/config"
	"github.com/klokku/multical/internal/event_bus"
	"github.com/klokku/multical/internal/utils"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, the calendar registry, router,
// and server lifecycle.
type Application struct {
	cfg  config.Application
	db   *sql.DB
	repo registry.Repository
	deps *Dependencies

	router *mux.Router
	srv    *http.Server
}

// NewApplication opens storage, restores the registry and builds the HTTP
// application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	policy, err := registry.ParseLoadPolicy(cfg.Storage.OnLoadError)
	if err != nil {
		return nil, err
	}

	repo, db, err := openRepository(cfg.Storage)
	if err != nil {
		return nil, err
	}

	bus := event_bus.NewEventBus(utils.SystemClock{})
	reg, err := registry.Load(ctx, repo, bus, policy)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}
	if cfg.Storage.Autosave {
		registry.Autosave(bus, repo, reg)
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(ctx, cfg, bus, reg)

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, repo: repo, deps: deps, router: r, srv: srv}, nil
}

func (a *Application) Registry() *registry.Registry {
	return a.deps.Registry
}

func (a *Application) Dependencies() *Dependencies {
	return a.deps
}

func (a *Application) Handler() http.Handler {
	return a.router
}

// Save writes the current registry to storage.
func (a *Application) Save(ctx context.Context) error {
	return registry.Save(ctx, a.repo, a.deps.Registry)
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the database, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

package app

import (
	"database/sql"

	"github.com/klokku/multical/internal/config"
	"github.com/klokku/multical/internal/database"
	"github.com/klokku/multical/pkg/registry"
	log "github.com/sirupsen/logrus"
)

// openRepository returns the repository for the configured driver. The db is
// nil for the in-memory driver.
func openRepository(cfg config.Storage) (registry.Repository, *sql.DB, error) {
	if cfg.Driver == database.DriverMemory {
		log.Warn("using in-memory storage, calendars are lost on exit")
		return registry.NewRepositoryStub(), nil, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db, cfg); err != nil {
		db.Close()
		return nil, nil, err
	}
	repo, err := registry.NewRepository(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}

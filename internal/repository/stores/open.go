// Package stores opens the repository.Store selected by configuration.
package stores

import (
	"context"
	"fmt"

	"github.com/mamadbah2/salesdesk/internal/config"
	"github.com/mamadbah2/salesdesk/internal/repository"
	"github.com/mamadbah2/salesdesk/internal/repository/memory"
	"github.com/mamadbah2/salesdesk/internal/repository/mongodb"
	"github.com/mamadbah2/salesdesk/internal/repository/sqlite"
)

// Open connects to the configured backend. The sqlite schema is migrated on
// open.
func Open(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMongoDB:
		store, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

package store

import (
	"context"
	"fmt"

	"github.com/nutrisync/nutrisync/internal/config"
	"github.com/nutrisync/nutrisync/internal/logger"
)

// Storages groups the three regions of the client's local store into a single
// value that can be passed around the service layer.
type Storages struct {
	// Cache holds one snapshot of the last known server response per query key.
	Cache CacheRepository
	// Queue is the durable pending-mutation queue.
	Queue QueueRepository
	// Meta is the small key/value metadata table (lastSyncedAt etc.).
	Meta MetaRepository
}

// NewStorages initialises the client storage layer using the supplied
// configuration and logger. It opens the SQLite database (creating the file
// if needed), applies pending schema migrations, and wires the three region
// repositories to the shared connection.
func NewStorages(cfg config.ClientStorage, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating local storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Cache: NewCacheRepository(db, log),
		Queue: NewQueueRepository(db, log),
		Meta:  NewMetaRepository(db, log),
	}, nil
}

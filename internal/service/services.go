package service

import (
	"github.com/nutrisync/nutrisync/internal/adapter"
	"github.com/nutrisync/nutrisync/internal/config"
	"github.com/nutrisync/nutrisync/internal/connectivity"
	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/internal/store"
)

// Services groups the client's service layer.
type Services struct {
	Data    DataService
	Sync    SyncEngine
	SyncJob SyncJob
}

// NewServices wires the offline data access layer, the sync engine and the
// background sync job over the shared storages, adapter and connectivity
// monitor.
func NewServices(storages *store.Storages, serverAdapter adapter.ServerAdapter, monitor connectivity.Monitor, workersCfg config.ClientWorkers, log *logger.Logger) *Services {
	engine := NewSyncEngine(storages, serverAdapter, monitor, log)
	data := NewDataService(storages, serverAdapter, engine, monitor, log)

	return &Services{
		Data:    data,
		Sync:    engine,
		SyncJob: NewSyncJob(engine, monitor, workersCfg.SyncInterval, log),
	}
}

package client

import (
	"context"
	"fmt"

	"github.com/nutrisync/nutrisync/internal/adapter"
	"github.com/nutrisync/nutrisync/internal/config"
	"github.com/nutrisync/nutrisync/internal/connectivity"
	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/internal/service"
	"github.com/nutrisync/nutrisync/internal/store"
	"github.com/nutrisync/nutrisync/internal/tui"
	"github.com/nutrisync/nutrisync/internal/workers"
)

// App is the assembled client application.
type App struct {
	services *service.Services
	workers  *workers.Workers
	ui       *tui.TUI

	logger *logger.Logger
}

// NewApp wires the full client stack from configuration: local storages,
// server adapter, connectivity monitor, services, background workers and the
// status TUI.
func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storages: %w", err)
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	monitor := connectivity.NewHealthMonitor(serverAdapter, cfg.Workers.PollInterval, log)
	services := service.NewServices(storages, serverAdapter, monitor, cfg.Workers, log)

	ui, err := tui.New(services.Sync, storages.Meta, log)
	if err != nil {
		return nil, fmt.Errorf("create ui: %w", err)
	}

	return &App{
		services: services,
		workers:  workers.New(workers.ForMonitor(monitor), workers.ForSyncJob(services.SyncJob)),
		ui:       ui,
		logger:   log,
	}, nil
}

// Run starts the background workers, blocks on the status TUI and shuts the
// workers down on exit.
func (a *App) Run() error {
	ctx := a.logger.WithContext(context.Background())

	a.workers.Start(ctx)
	defer a.workers.Stop()

	return a.ui.Run(ctx)
}

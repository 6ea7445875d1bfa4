// Package tui renders the passive sync-status indicator: current status,
// pending mutation count and the last successful sync time, with a manual
// "sync now" keybinding.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/internal/service"
	"github.com/nutrisync/nutrisync/internal/store"
)

// TUI owns the status indicator program.
type TUI struct {
	engine service.SyncEngine
	meta   store.MetaRepository

	logger *logger.Logger
}

// New constructs the status indicator over the sync engine's subscription and
// the meta region (for lastSyncedAt).
func New(engine service.SyncEngine, meta store.MetaRepository, logger *logger.Logger) (*TUI, error) {
	return &TUI{engine: engine, meta: meta, logger: logger}, nil
}

// Run blocks displaying the indicator until the user quits.
func (t *TUI) Run(ctx context.Context) error {
	model := newStatusModel(ctx, t.engine, t.meta)
	defer model.unsubscribe()

	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

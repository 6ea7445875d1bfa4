package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nutrisync/nutrisync/internal/service"
	"github.com/nutrisync/nutrisync/internal/store"
	"github.com/nutrisync/nutrisync/models"
)

type statusUpdateMsg struct {
	status  models.SyncStatus
	pending int
}

type statusModel struct {
	ctx    context.Context
	engine service.SyncEngine
	meta   store.MetaRepository

	spinner      spinner.Model
	status       models.SyncStatus
	pending      int
	lastSyncedAt string

	updates     chan statusUpdateMsg
	unsubscribe func()
}

func newStatusModel(ctx context.Context, engine service.SyncEngine, meta store.MetaRepository) statusModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	updates := make(chan statusUpdateMsg, 64)
	unsubscribe := engine.Subscribe(func(status models.SyncStatus, pending int) {
		select {
		case updates <- statusUpdateMsg{status: status, pending: pending}:
		default:
		}
	})

	m := statusModel{
		ctx:         ctx,
		engine:      engine,
		meta:        meta,
		spinner:     s,
		status:      models.StatusIdle,
		updates:     updates,
		unsubscribe: unsubscribe,
	}
	m.refreshLastSyncedAt()
	return m
}

func (m statusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.engine.TriggerSync(m.ctx)
			return m, nil
		}

	case statusUpdateMsg:
		m.status = msg.status
		m.pending = msg.pending
		m.refreshLastSyncedAt()
		return m, waitForUpdate(m.updates)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m statusModel) View() string {
	line := m.statusLine()

	body := titleStyle.Render("nutrisync") + "\n\n" +
		line + "\n" +
		fmt.Sprintf("pending mutations: %d\n", m.pending) +
		fmt.Sprintf("last synced: %s\n", m.lastSyncedAt)

	return appStyle.Render(body + "\n" + helpStyle.Render("s sync now · q quit"))
}

func (m statusModel) statusLine() string {
	switch m.status {
	case models.StatusSyncing:
		return m.spinner.View() + " " + syncingStyle.Render("syncing")
	case models.StatusOffline:
		return offlineStyle.Render("● offline")
	case models.StatusError:
		return errorStyle.Render("● sync error")
	default:
		return idleStyle.Render("● idle")
	}
}

func (m *statusModel) refreshLastSyncedAt() {
	stamp, err := m.meta.Get(m.ctx, models.MetaLastSyncedAt)
	if err != nil {
		if !errors.Is(err, store.ErrMetaNotFound) {
			m.lastSyncedAt = "unknown"
			return
		}
		m.lastSyncedAt = "never"
		return
	}

	if parsed, parseErr := time.Parse(time.RFC3339, stamp); parseErr == nil {
		m.lastSyncedAt = parsed.Local().Format("15:04:05")
		return
	}
	m.lastSyncedAt = stamp
}

func waitForUpdate(updates chan statusUpdateMsg) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

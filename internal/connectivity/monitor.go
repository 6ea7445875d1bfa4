// Package connectivity tracks whether the tracker server is reachable and
// notifies subscribers about transitions between online and offline.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/nutrisync/nutrisync/internal/logger"
)

//go:generate mockgen -source=monitor.go -destination=../mock/connectivity_mock.go -package=mock

// Pinger probes server reachability. [adapter.ServerAdapter] satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor reports current reachability and fires callbacks on transitions.
type Monitor interface {
	// Online returns the last observed reachability state.
	Online() bool

	// Subscribe registers transition callbacks and returns an unsubscribe
	// function. onOnline fires on each offline-to-online transition, onOffline
	// on each online-to-offline transition. Either callback may be nil.
	Subscribe(onOnline, onOffline func()) func()

	// SetOnline overrides the observed state, firing callbacks when the value
	// changes. It lets transport errors flip the state between polls instead
	// of waiting for the next probe.
	SetOnline(online bool)

	// Start launches the background polling loop.
	Start()

	// Stop terminates the polling loop and waits for it to exit.
	Stop()
}

type healthMonitor struct {
	pinger       Pinger
	pollInterval time.Duration
	logger       *logger.Logger

	mu        sync.Mutex
	online    bool
	listeners map[int]subscription
	nextID    int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type subscription struct {
	onOnline  func()
	onOffline func()
}

// NewHealthMonitor builds a [Monitor] that probes the server via pinger every
// pollInterval. The monitor starts in the offline state; the first successful
// probe (or SetOnline call) flips it online.
func NewHealthMonitor(pinger Pinger, pollInterval time.Duration, logger *logger.Logger) Monitor {
	return &healthMonitor{
		pinger:       pinger,
		pollInterval: pollInterval,
		logger:       logger,
		listeners:    make(map[int]subscription),
	}
}

func (m *healthMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *healthMonitor) Subscribe(onOnline, onOffline func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = subscription{onOnline: onOnline, onOffline: onOffline}

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *healthMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	callbacks := make([]func(), 0, len(m.listeners))
	for _, sub := range m.listeners {
		cb := sub.onOffline
		if online {
			cb = sub.onOnline
		}
		if cb != nil {
			callbacks = append(callbacks, cb)
		}
	}
	m.mu.Unlock()

	m.logger.Info().Str("func", "healthMonitor.SetOnline").Bool("online", online).Msg("connectivity changed")

	// callbacks run outside the lock so they may call back into the monitor
	for _, cb := range callbacks {
		cb()
	}
}

func (m *healthMonitor) Start() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loop(ctx)

	m.logger.Info().
		Str("func", "healthMonitor.Start").
		Dur("poll_interval", m.pollInterval).
		Msg("connectivity monitor started")
}

func (m *healthMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()

	m.logger.Info().Str("func", "healthMonitor.Stop").Msg("connectivity monitor stopped")
}

func (m *healthMonitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	m.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *healthMonitor) probe(ctx context.Context) {
	err := m.pinger.Ping(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	m.SetOnline(err == nil)
}

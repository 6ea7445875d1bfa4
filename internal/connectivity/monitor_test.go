package connectivity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/logger"
)

// flakyPinger flips between reachable and unreachable under test control.
type flakyPinger struct {
	mu        sync.Mutex
	reachable bool
	probes    chan struct{}
}

func newFlakyPinger(reachable bool) *flakyPinger {
	return &flakyPinger{reachable: reachable, probes: make(chan struct{}, 16)}
}

func (p *flakyPinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	reachable := p.reachable
	p.mu.Unlock()

	select {
	case p.probes <- struct{}{}:
	default:
	}

	if !reachable {
		return errors.New("connection refused")
	}
	return nil
}

func (p *flakyPinger) setReachable(v bool) {
	p.mu.Lock()
	p.reachable = v
	p.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestHealthMonitor_StartsOffline(t *testing.T) {
	m := NewHealthMonitor(newFlakyPinger(true), time.Hour, logger.Nop())
	assert.False(t, m.Online())
}

func TestHealthMonitor_ProbeFlipsOnline(t *testing.T) {
	pinger := newFlakyPinger(true)
	m := NewHealthMonitor(pinger, 10*time.Millisecond, logger.Nop())

	m.Start()
	defer m.Stop()

	waitFor(t, m.Online)
}

func TestHealthMonitor_TransitionCallbacks(t *testing.T) {
	pinger := newFlakyPinger(false)
	m := NewHealthMonitor(pinger, 10*time.Millisecond, logger.Nop())

	var mu sync.Mutex
	var events []string
	unsubscribe := m.Subscribe(
		func() { mu.Lock(); events = append(events, "online"); mu.Unlock() },
		func() { mu.Lock(); events = append(events, "offline"); mu.Unlock() },
	)
	defer unsubscribe()

	m.Start()
	defer m.Stop()

	// server comes up
	pinger.setReachable(true)
	waitFor(t, m.Online)

	// server goes down again
	pinger.setReachable(false)
	waitFor(t, func() bool { return !m.Online() })

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "online", events[0])
	assert.Equal(t, "offline", events[1])
}

func TestHealthMonitor_SetOnlineOverride(t *testing.T) {
	m := NewHealthMonitor(newFlakyPinger(false), time.Hour, logger.Nop())

	fired := 0
	m.Subscribe(func() { fired++ }, nil)

	m.SetOnline(true)
	assert.True(t, m.Online())
	assert.Equal(t, 1, fired)

	// no transition, no callback
	m.SetOnline(true)
	assert.Equal(t, 1, fired)
}

func TestHealthMonitor_Unsubscribe(t *testing.T) {
	m := NewHealthMonitor(newFlakyPinger(false), time.Hour, logger.Nop())

	fired := 0
	unsubscribe := m.Subscribe(func() { fired++ }, nil)
	unsubscribe()

	m.SetOnline(true)
	assert.Zero(t, fired)
}

func TestHealthMonitor_StopTerminatesPolling(t *testing.T) {
	pinger := newFlakyPinger(true)
	m := NewHealthMonitor(pinger, 5*time.Millisecond, logger.Nop())

	m.Start()
	<-pinger.probes
	m.Stop()

	// drain anything in flight, then verify no further probes arrive
	for len(pinger.probes) > 0 {
		<-pinger.probes
	}
	select {
	case <-pinger.probes:
		t.Fatal("probe after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHealthMonitor_StartIsIdempotent(t *testing.T) {
	pinger := newFlakyPinger(true)
	m := NewHealthMonitor(pinger, 10*time.Millisecond, logger.Nop())

	m.Start()
	m.Start()
	defer m.Stop()

	waitFor(t, m.Online)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/config"
	"github.com/nutrisync/nutrisync/internal/connectivity"
	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/internal/store"
	"github.com/nutrisync/nutrisync/models"
)

func newTestStorages(t *testing.T) *store.Storages {
	t.Helper()

	cfg := config.ClientStorage{
		DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "client.db")},
	}
	storages, err := store.NewStorages(cfg, logger.Nop())
	require.NoError(t, err)
	return storages
}

// stubAdapter is a hand-rolled transport that records replay order and
// answers with a programmable status. If block is non-nil, Send signals
// entered once and then waits until block is closed.
type stubAdapter struct {
	mu    sync.Mutex
	calls []string

	status int
	err    error

	block   chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (a *stubAdapter) Send(ctx context.Context, method, url string, body json.RawMessage) (int, []byte, error) {
	a.mu.Lock()
	a.calls = append(a.calls, method+" "+url)
	a.mu.Unlock()

	if a.block != nil {
		a.once.Do(func() { close(a.entered) })
		<-a.block
	}
	if a.err != nil {
		return 0, nil, a.err
	}
	return a.status, nil, nil
}

func (a *stubAdapter) Get(ctx context.Context, query string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (a *stubAdapter) FindOrCreateProduct(ctx context.Context, req models.FindOrCreateProductRequest) (models.FindOrCreateProductResult, error) {
	return models.FindOrCreateProductResult{}, errors.New("not used")
}

func (a *stubAdapter) Ping(ctx context.Context) error { return nil }

func (a *stubAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func (a *stubAdapter) recordedCalls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func newOnlineMonitor() connectivity.Monitor {
	m := connectivity.NewHealthMonitor(nil, time.Hour, logger.Nop())
	m.SetOnline(true)
	return m
}

// statusRecorder collects every published (status, pendingCount) pair.
type statusRecorder struct {
	mu     sync.Mutex
	events []statusEvent
}

type statusEvent struct {
	status  models.SyncStatus
	pending int
}

func (r *statusRecorder) listen(status models.SyncStatus, pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, statusEvent{status, pending})
}

func (r *statusRecorder) recorded() []statusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]statusEvent(nil), r.events...)
}

func enqueueAt(t *testing.T, storages *store.Storages, ts time.Time, method, url string) {
	t.Helper()
	_, err := storages.Queue.Enqueue(context.Background(), models.SyncQueueItem{
		Timestamp: ts,
		Method:    method,
		URL:       url,
	})
	require.NoError(t, err)
}

func TestSyncEngine_ReplayOrdering(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusOK}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	// enqueued out of chronological order
	enqueueAt(t, storages, base.Add(2*time.Second), "POST", "/api/data?n=3")
	enqueueAt(t, storages, base, "POST", "/api/data?n=1")
	enqueueAt(t, storages, base.Add(time.Second), "DELETE", "/api/data?n=2")

	engine.ProcessSyncQueue(ctx)

	assert.Equal(t, []string{
		"POST /api/data?n=1",
		"DELETE /api/data?n=2",
		"POST /api/data?n=3",
	}, transport.recordedCalls())

	count, err := storages.Queue.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSyncEngine_DropOn4xx(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusBadRequest}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	enqueueAt(t, storages, time.Now(), "POST", "/api/data")

	engine.ProcessSyncQueue(ctx)

	// exactly one attempt, item gone: the server will never accept it
	assert.Equal(t, 1, transport.callCount())
	count, err := storages.Queue.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSyncEngine_BoundedRetries(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusInternalServerError}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	enqueueAt(t, storages, time.Now(), "POST", "/api/data")

	for pass := 1; pass < MaxRetries; pass++ {
		engine.ProcessSyncQueue(ctx)

		items, err := storages.Queue.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1, "pass %d", pass)
		assert.Equal(t, pass, items[0].Retries, "retry count persists across passes")
	}

	// the pass that hits the ceiling drops the item
	engine.ProcessSyncQueue(ctx)
	count, err := storages.Queue.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, MaxRetries, transport.callCount())

	// no sixth attempt
	engine.ProcessSyncQueue(ctx)
	assert.Equal(t, MaxRetries, transport.callCount())
}

func TestSyncEngine_ReEntrancy(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{
		status:  http.StatusOK,
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	enqueueAt(t, storages, time.Now(), "POST", "/api/data")

	done := make(chan struct{})
	go func() {
		engine.ProcessSyncQueue(ctx)
		close(done)
	}()

	<-transport.entered

	// second call while the first pass is mid-replay must be a no-op
	engine.ProcessSyncQueue(ctx)

	close(transport.block)
	<-done

	assert.Equal(t, 1, transport.callCount())
}

func TestSyncEngine_OfflinePublishesPendingCount(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusOK}
	monitor := connectivity.NewHealthMonitor(nil, time.Hour, logger.Nop())
	engine := NewSyncEngine(storages, transport, monitor, logger.Nop())

	enqueueAt(t, storages, time.Now(), "POST", "/api/data?n=1")
	enqueueAt(t, storages, time.Now(), "POST", "/api/data?n=2")

	rec := &statusRecorder{}
	engine.Subscribe(rec.listen)

	engine.ProcessSyncQueue(ctx)

	events := rec.recorded()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, models.StatusOffline, last.status)
	assert.Equal(t, 2, last.pending)
	assert.Zero(t, transport.callCount(), "no network calls while offline")
}

func TestSyncEngine_SubscribeDeliversCurrentStateAndUnsubscribes(t *testing.T) {
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusOK}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	rec := &statusRecorder{}
	unsubscribe := engine.Subscribe(rec.listen)

	events := rec.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusIdle, events[0].status)
	assert.Zero(t, events[0].pending)

	unsubscribe()
	engine.ProcessSyncQueue(context.Background())
	assert.Len(t, rec.recorded(), 1, "no events after unsubscribe")
}

func TestSyncEngine_StampsLastSyncedAt(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusOK}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	enqueueAt(t, storages, time.Now(), "POST", "/api/data")

	before := time.Now().Add(-time.Second)
	engine.ProcessSyncQueue(ctx)

	stamp, err := storages.Meta.Get(ctx, models.MetaLastSyncedAt)
	require.NoError(t, err)
	parsed, err := time.Parse(time.RFC3339, stamp)
	require.NoError(t, err)
	assert.True(t, parsed.After(before), "lastSyncedAt %v not after %v", parsed, before)
}

func TestSyncEngine_SyncingCountMonotonicallyDecreases(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusOK}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	base := time.Now()
	for i := 0; i < 3; i++ {
		enqueueAt(t, storages, base.Add(time.Duration(i)*time.Second), "POST", fmt.Sprintf("/api/data?n=%d", i))
	}

	rec := &statusRecorder{}
	engine.Subscribe(rec.listen)

	engine.ProcessSyncQueue(ctx)

	events := rec.recorded()
	// initial idle on subscribe, then syncing 3,2,1,0, then final idle 0
	require.GreaterOrEqual(t, len(events), 6)

	var syncingCounts []int
	for _, e := range events[1:] {
		if e.status == models.StatusSyncing {
			syncingCounts = append(syncingCounts, e.pending)
		}
	}
	assert.Equal(t, []int{3, 2, 1, 0}, syncingCounts)

	final := events[len(events)-1]
	assert.Equal(t, models.StatusIdle, final.status)
	assert.Zero(t, final.pending)
}

func TestSyncEngine_ErrorStatusWhenItemKept(t *testing.T) {
	ctx := context.Background()
	storages := newTestStorages(t)
	transport := &stubAdapter{err: fmt.Errorf("server unavailable: connection refused")}
	engine := NewSyncEngine(storages, transport, newOnlineMonitor(), logger.Nop())

	enqueueAt(t, storages, time.Now(), "POST", "/api/data")

	rec := &statusRecorder{}
	engine.Subscribe(rec.listen)

	engine.ProcessSyncQueue(ctx)

	events := rec.recorded()
	final := events[len(events)-1]
	assert.Equal(t, models.StatusError, final.status)
	assert.Equal(t, 1, final.pending)
}

func TestSyncEngine_TriggerSyncNoopWhenOffline(t *testing.T) {
	storages := newTestStorages(t)
	transport := &stubAdapter{status: http.StatusOK}
	monitor := connectivity.NewHealthMonitor(nil, time.Hour, logger.Nop())
	engine := NewSyncEngine(storages, transport, monitor, logger.Nop())

	enqueueAt(t, storages, time.Now(), "POST", "/api/data")

	engine.TriggerSync(context.Background())
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, transport.callCount())
}

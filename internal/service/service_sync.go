package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nutrisync/nutrisync/internal/adapter"
	"github.com/nutrisync/nutrisync/internal/connectivity"
	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/internal/store"
	"github.com/nutrisync/nutrisync/models"
)

// MaxRetries is the fixed per-mutation attempt ceiling. After this many
// failed replays the item is dropped so a perpetually-failing mutation cannot
// block the rest of the queue.
const MaxRetries = 5

type syncEngine struct {
	queue   store.QueueRepository
	meta    store.MetaRepository
	adapter adapter.ServerAdapter
	monitor connectivity.Monitor

	isSyncing atomic.Bool

	mu        sync.Mutex
	status    models.SyncStatus
	pending   int
	listeners map[int]func(models.SyncStatus, int)
	nextID    int

	logger *logger.Logger
}

// NewSyncEngine constructs the engine over the queue and meta regions, the
// server adapter and the connectivity monitor. The engine starts idle with a
// pending count of zero.
func NewSyncEngine(storages *store.Storages, serverAdapter adapter.ServerAdapter, monitor connectivity.Monitor, logger *logger.Logger) SyncEngine {
	return &syncEngine{
		queue:     storages.Queue,
		meta:      storages.Meta,
		adapter:   serverAdapter,
		monitor:   monitor,
		status:    models.StatusIdle,
		listeners: make(map[int]func(models.SyncStatus, int)),
		logger:    logger,
	}
}

func (e *syncEngine) Subscribe(listener func(status models.SyncStatus, pendingCount int)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener
	status, pending := e.status, e.pending
	e.mu.Unlock()

	// current state is delivered immediately on subscribe
	listener(status, pending)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *syncEngine) TriggerSync(ctx context.Context) {
	if !e.monitor.Online() || e.isSyncing.Load() {
		return
	}

	bgCtx := logger.FromContext(ctx).WithContext(context.WithoutCancel(ctx))
	go e.ProcessSyncQueue(bgCtx)
}

func (e *syncEngine) ProcessSyncQueue(ctx context.Context) {
	log := logger.FromContext(ctx)

	if e.isSyncing.Load() {
		return
	}

	if !e.monitor.Online() {
		e.publish(ctx, models.StatusOffline, e.recountPending(ctx))
		return
	}

	if !e.isSyncing.CompareAndSwap(false, true) {
		return
	}
	defer e.isSyncing.Store(false)

	items, err := e.queue.ListPending(ctx)
	if err != nil {
		log.Err(err).
			Str("func", "syncEngine.ProcessSyncQueue").
			Msg("failed to load pending queue")
		e.publish(ctx, models.StatusError, e.recountPending(ctx))
		return
	}

	if len(items) == 0 {
		e.publish(ctx, models.StatusIdle, 0)
		return
	}

	remaining := len(items)
	e.publish(ctx, models.StatusSyncing, remaining)

	hadError := false
	for _, item := range items {
		if e.replayMutation(ctx, item) {
			if removeErr := e.queue.Remove(ctx, item.ID); removeErr != nil {
				log.Err(removeErr).
					Str("func", "syncEngine.ProcessSyncQueue").
					Int64("id", item.ID).
					Msg("failed to remove settled queue item")
				hadError = true
				continue
			}
			remaining--
			e.publish(ctx, models.StatusSyncing, remaining)
			continue
		}

		item.Retries++
		if item.Retries >= MaxRetries {
			// drop permanently so the rest of the queue keeps moving
			log.Warn().
				Str("func", "syncEngine.ProcessSyncQueue").
				Int64("id", item.ID).
				Str("method", item.Method).
				Str("url", item.URL).
				Int("retries", item.Retries).
				Msg("dropping mutation after retry ceiling")
			if removeErr := e.queue.Remove(ctx, item.ID); removeErr != nil {
				log.Err(removeErr).
					Str("func", "syncEngine.ProcessSyncQueue").
					Int64("id", item.ID).
					Msg("failed to drop exhausted queue item")
				hadError = true
				continue
			}
			remaining--
			e.publish(ctx, models.StatusSyncing, remaining)
			continue
		}

		// keep the item with the incremented retry count so it survives a
		// restart; original timestamp is preserved for replay order
		if updateErr := e.queue.Update(ctx, item); updateErr != nil {
			log.Err(updateErr).
				Str("func", "syncEngine.ProcessSyncQueue").
				Int64("id", item.ID).
				Msg("failed to persist retry count")
		}
		hadError = true
	}

	if metaErr := e.meta.Set(ctx, models.MetaLastSyncedAt, time.Now().UTC().Format(time.RFC3339)); metaErr != nil {
		log.Err(metaErr).
			Str("func", "syncEngine.ProcessSyncQueue").
			Msg("failed to stamp lastSyncedAt")
	}

	final := models.StatusIdle
	if hadError {
		final = models.StatusError
	}
	e.publish(ctx, final, remaining)
}

// replayMutation sends one queued mutation verbatim and interprets the
// outcome: 2xx settles the item; 4xx also settles it because the server will
// never accept the request no matter how often it is retried; 5xx and
// transport errors are retryable failures.
func (e *syncEngine) replayMutation(ctx context.Context, item models.SyncQueueItem) bool {
	log := logger.FromContext(ctx)

	status, _, err := e.adapter.Send(ctx, item.Method, e.replayURL(item.URL), item.Body)
	if err != nil {
		log.Debug().Err(err).
			Str("func", "syncEngine.replayMutation").
			Int64("id", item.ID).
			Msg("replay failed without a server response")
		return false
	}

	switch {
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		return true
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		log.Warn().
			Str("func", "syncEngine.replayMutation").
			Int64("id", item.ID).
			Str("method", item.Method).
			Str("url", item.URL).
			Int("status", status).
			Msg("server rejected mutation, dropping without retry")
		return true
	default:
		log.Debug().
			Str("func", "syncEngine.replayMutation").
			Int64("id", item.ID).
			Int("status", status).
			Msg("replay failed, mutation stays queued")
		return false
	}
}

// replayURL roots relative URLs at the API base; already-rooted paths and
// absolute URLs are used verbatim.
func (e *syncEngine) replayURL(raw string) string {
	if strings.HasPrefix(raw, "/") || strings.Contains(raw, "://") {
		return raw
	}
	return apiBasePath + "/" + raw
}

func (e *syncEngine) recountPending(ctx context.Context) int {
	count, err := e.queue.CountPending(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncEngine.recountPending").
			Msg("failed to count pending queue items")

		e.mu.Lock()
		defer e.mu.Unlock()
		return e.pending
	}
	return count
}

func (e *syncEngine) publish(ctx context.Context, status models.SyncStatus, pending int) {
	e.mu.Lock()
	e.status = status
	e.pending = pending
	callbacks := make([]func(models.SyncStatus, int), 0, len(e.listeners))
	for _, listener := range e.listeners {
		callbacks = append(callbacks, listener)
	}
	e.mu.Unlock()

	logger.FromContext(ctx).Debug().
		Str("func", "syncEngine.publish").
		Str("status", string(status)).
		Int("pending", pending).
		Msg("sync status changed")

	for _, cb := range callbacks {
		cb(status, pending)
	}
}

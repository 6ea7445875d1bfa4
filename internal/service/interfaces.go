// Package service contains the client's offline-aware data access layer and
// the sync engine that drains the durable mutation queue.
//
// All domain reads and writes go through [DataService], which hides whether
// the app is currently online: reads are network-first with a cache fallback,
// writes are durably enqueued before any network attempt. [SyncEngine] owns
// the drain state machine and the status subscription exposed to the UI;
// [SyncJob] wires connectivity transitions, a periodic safety-net timer and
// background wake messages to the engine's single drain entry point.
package service

import (
	"context"
	"encoding/json"

	"github.com/nutrisync/nutrisync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// DataService is the single seam through which all domain reads and writes
// pass.
type DataService interface {
	// Get performs a network-first read. query is the tracker API path plus
	// query string (e.g. "/api/data?type=weight") and doubles as the cache
	// key. On a successful fetch the payload is cached in the background and
	// returned; on any network failure the last cached payload for query is
	// returned instead. Returns [ErrNoDataAvailable] when the network fails
	// and nothing is cached; callers substitute a safe default.
	Get(ctx context.Context, query string) (json.RawMessage, error)

	// Post durably enqueues mutation, optionally applying an optimistic cache
	// patch first, then attempts an immediate send when online and triggers a
	// sync pass. The returned error is non-nil only when the durable enqueue
	// itself fails; network failures never fail a write.
	Post(ctx context.Context, mutation models.Mutation, patch *models.Patch) error

	// SaveRecord upserts one domain record of the given resource kind. It is
	// a convenience wrapper around Post that builds the standard
	// {type, data} mutation body and an optimistic patch keyed on "id".
	SaveRecord(ctx context.Context, resource string, record map[string]any) error

	// DeleteRecord removes one domain record by id, mirroring SaveRecord with
	// a DELETE mutation and a deletion-flavored optimistic patch.
	DeleteRecord(ctx context.Context, resource, id string) error

	// FindOrCreateProduct resolves a product through server-side
	// deduplication when online. When offline it fabricates a placeholder
	// UUID identity, applies it optimistically and queues the request for
	// replay; the server may later assign a different canonical id (known
	// limitation, no reconciliation pass).
	FindOrCreateProduct(ctx context.Context, req models.FindOrCreateProductRequest) (models.FindOrCreateProductResult, error)
}

// SyncEngine owns the drain state machine over the mutation queue and the
// status subscription.
type SyncEngine interface {
	// ProcessSyncQueue runs one drain pass over the pending queue. Re-entrant
	// calls while a pass is running are no-ops; when offline it only
	// recomputes the pending count and publishes the offline status. It never
	// returns an error: per-item failures are absorbed into retry/drop
	// bookkeeping and surface only through the published status.
	ProcessSyncQueue(ctx context.Context)

	// TriggerSync is the cheap conditional invocation used after every write:
	// when online and not already syncing it starts a drain pass in the
	// background, otherwise it does nothing.
	TriggerSync(ctx context.Context)

	// Subscribe registers a status listener and returns an unsubscribe
	// function. The listener is invoked immediately with the current state
	// and again on every status change.
	Subscribe(listener func(status models.SyncStatus, pendingCount int)) func()
}

// SyncJob wires connectivity transitions, the periodic safety-net timer and
// platform wake messages to the engine.
type SyncJob interface {
	// Start subscribes to connectivity transitions, launches the periodic
	// timer and runs an immediate drain attempt if already online.
	Start(ctx context.Context)

	// Stop unsubscribes, terminates the timer goroutine and waits for it to
	// exit. Safe to call when the job is not running.
	Stop()

	// Wake is the background-sync message entry point. Its only behavior is
	// invoking the same drain entry point, asynchronously.
	Wake()
}

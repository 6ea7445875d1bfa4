package store

import (
	"context"
	"encoding/json"

	"github.com/nutrisync/nutrisync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CacheRepository is the cache region of the local store: one snapshot of the
// last known server response per canonical query key.
//
// Every operation is best-effort from the caller's perspective: a cache write
// failing must never block the corresponding mutation from being queued and
// attempted over the network.
type CacheRepository interface {
	// CacheResponse upserts data under key, stamping the entry with the
	// current time.
	CacheResponse(ctx context.Context, key string, data json.RawMessage) error

	// GetCachedResponse returns the snapshot stored under key, or
	// [ErrCacheMiss] if no entry exists.
	GetCachedResponse(ctx context.Context, key string) (models.CachedResponse, error)

	// ApplyPatch upserts patch.Record into every cached response whose key
	// belongs to patch.Collection. Array payloads get the record merged in
	// by identity (insert if absent, merge if present); non-array payloads
	// are left untouched.
	ApplyPatch(ctx context.Context, patch models.Patch) error

	// ApplyDeletion removes the element identified by del.ID from every
	// cached collection matching del.Collection.
	ApplyDeletion(ctx context.Context, del models.DeletionPatch) error

	// Clear drops all cached responses.
	Clear(ctx context.Context) error
}

// QueueRepository is the durable mutation queue region of the local store.
type QueueRepository interface {
	// Enqueue persists item and returns the queue-assigned id.
	Enqueue(ctx context.Context, item models.SyncQueueItem) (int64, error)

	// ListPending returns all queued items ordered by timestamp ascending
	// (id breaks ties).
	ListPending(ctx context.Context) ([]models.SyncQueueItem, error)

	// Remove deletes the item with the given id. Removing an absent id is
	// not an error.
	Remove(ctx context.Context, id int64) error

	// Update overwrites the stored item identified by item.ID.
	Update(ctx context.Context, item models.SyncQueueItem) error

	// CountPending returns the number of queued items.
	CountPending(ctx context.Context) (int, error)
}

// MetaRepository is the small key/value metadata region (e.g. lastSyncedAt).
// Last write wins per key.
type MetaRepository interface {
	Set(ctx context.Context, key, value string) error

	// Get returns the value stored under key, or [ErrMetaNotFound].
	Get(ctx context.Context, key string) (string, error)
}

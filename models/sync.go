package models

import (
	"encoding/json"
	"time"
)

// SyncStatus describes the aggregate state of the sync engine as observed by
// subscribers. Transitions are driven solely by the engine; the UI only reads.
type SyncStatus string

const (
	// StatusIdle means the queue is empty and the last drain pass (if any)
	// succeeded.
	StatusIdle SyncStatus = "idle"
	// StatusOffline means the environment currently reports no connectivity.
	StatusOffline SyncStatus = "offline"
	// StatusSyncing means a drain pass is in progress.
	StatusSyncing SyncStatus = "syncing"
	// StatusError means the last drain pass left at least one item queued
	// due to a retryable failure.
	StatusError SyncStatus = "error"
)

// SyncQueueItem is one pending mutation awaiting replay against the server.
//
// Items are totally ordered by Timestamp ascending for replay. Retries only
// increases. An item is removed exactly once: on confirmed success, on a
// definitive client-side rejection, or after the retry ceiling is exceeded.
type SyncQueueItem struct {
	// ID is assigned by the queue region on insert.
	ID int64 `json:"id"`
	// Timestamp is the moment the user action occurred; it defines replay order.
	Timestamp time.Time `json:"timestamp"`
	// Method is the HTTP method of the queued mutation (POST or DELETE).
	Method string `json:"method"`
	// URL is the target resource path with query parameters. It may be
	// absolute; relative paths are resolved against the API base URL.
	URL string `json:"url"`
	// Body is the serialized payload, opaque to the sync engine.
	Body json.RawMessage `json:"body,omitempty"`
	// Retries counts failed replay attempts so far.
	Retries int `json:"retries"`
}

// Mutation is a write the data access layer hands to the queue. The queue
// assigns the ID and stamps the timestamp on enqueue.
type Mutation struct {
	Method string
	URL    string
	Body   json.RawMessage
}

// MetaLastSyncedAt is the meta-region key holding the RFC 3339 time of the
// last completed drain pass.
const MetaLastSyncedAt = "lastSyncedAt"

package models

import (
	"encoding/json"
	"time"
)

// CachedResponse is the cache-region value stored under a canonical query
// key. At most one entry exists per key; it is overwritten on every
// successful read and refreshed by optimistic patches. Entries never expire:
// network-first reads supersede stale cache.
type CachedResponse struct {
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cachedAt"`
}

// Patch describes an optimistic upsert of a record into every cached
// collection matching Collection. Identity is decided by the IDField key of
// Record: an existing element with the same id is merged, otherwise the
// record is appended.
type Patch struct {
	// Collection is the resource kind whose cached query responses should be
	// patched (matched against the `type=` parameter of cache keys).
	Collection string
	// IDField names the identity field inside Record (usually "id").
	IDField string
	// Record is the optimistic record as the server would return it.
	Record map[string]any
}

// DeletionPatch is the removal counterpart of Patch: the element whose
// IDField equals ID is removed from every matching cached collection.
type DeletionPatch struct {
	Collection string
	IDField    string
	ID         string
}

package store

const (
	upsertCacheEntry = `
		INSERT INTO cache_entries (key, data, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data      = excluded.data,
			cached_at = excluded.cached_at;`

	getCacheEntry = `
		SELECT data, cached_at
		FROM cache_entries
		WHERE key = ?;`

	updateCacheEntryData = `
		UPDATE cache_entries SET
			data      = ?,
			cached_at = ?
		WHERE key = ?;`

	clearCacheEntries = `DELETE FROM cache_entries;`

	enqueueItem = `
		INSERT INTO sync_queue (timestamp, method, url, body, retries)
		VALUES (?, ?, ?, ?, ?);`

	listPendingItems = `
		SELECT id, timestamp, method, url, body, retries
		FROM sync_queue
		ORDER BY timestamp ASC, id ASC;`

	removeItem = `DELETE FROM sync_queue WHERE id = ?;`

	updateItem = `
		UPDATE sync_queue SET
			timestamp = ?,
			method    = ?,
			url       = ?,
			body      = ?,
			retries   = ?
		WHERE id = ?;`

	countPendingItems = `SELECT COUNT(*) FROM sync_queue;`

	upsertMetaEntry = `
		INSERT INTO meta (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`

	getMetaEntry = `SELECT value FROM meta WHERE key = ?;`
)

// queueTimeLayout is a fixed-width UTC timestamp format so that the TEXT
// column sorts lexicographically in chronological order.
const queueTimeLayout = "2006-01-02T15:04:05.000000000Z"

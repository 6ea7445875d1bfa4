package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
	sq "github.com/Masterminds/squirrel"

	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/models"
)

type cacheRepository struct {
	*DB
	logger *logger.Logger
}

// NewCacheRepository constructs the SQLite-backed cached-response region.
func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		DB:     db,
		logger: logger,
	}
}

func (c *cacheRepository) CacheResponse(ctx context.Context, key string, data json.RawMessage) error {
	log := logger.FromContext(ctx)

	_, err := c.DB.ExecContext(ctx, upsertCacheEntry,
		key,
		string(data),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.CacheResponse").
			Str("key", key).
			Msg("failed to upsert cached response")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (c *cacheRepository) GetCachedResponse(ctx context.Context, key string) (models.CachedResponse, error) {
	log := logger.FromContext(ctx)

	var data, cachedAt string
	err := c.DB.QueryRowContext(ctx, getCacheEntry, key).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedResponse{}, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.GetCachedResponse").
			Str("key", key).
			Msg("failed to query cached response")
		return models.CachedResponse{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	ts, parseErr := time.Parse(time.RFC3339Nano, cachedAt)
	if parseErr != nil {
		log.Err(parseErr).
			Str("func", "cacheRepository.GetCachedResponse").
			Str("key", key).
			Msg("failed to parse cached_at")
		return models.CachedResponse{}, fmt.Errorf("failed to parse cached_at: %w", parseErr)
	}

	return models.CachedResponse{Data: json.RawMessage(data), CachedAt: ts}, nil
}

func (c *cacheRepository) ApplyPatch(ctx context.Context, patch models.Patch) error {
	return c.rewriteMatching(ctx, "cacheRepository.ApplyPatch", patch.Collection, func(payload json.RawMessage) (json.RawMessage, bool, error) {
		return upsertIntoCollection(payload, patch.IDField, patch.Record)
	})
}

func (c *cacheRepository) ApplyDeletion(ctx context.Context, del models.DeletionPatch) error {
	return c.rewriteMatching(ctx, "cacheRepository.ApplyDeletion", del.Collection, func(payload json.RawMessage) (json.RawMessage, bool, error) {
		return removeFromCollection(payload, del.IDField, del.ID)
	})
}

func (c *cacheRepository) Clear(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if _, err := c.DB.ExecContext(ctx, clearCacheEntries); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Clear").
			Msg("failed to clear cached responses")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// rewriteMatching loads every cached entry whose key carries the given
// resource collection, runs rewrite over its payload, and persists entries the
// rewrite actually changed. The result set is drained before any write so the
// connection is never used for reads and writes at the same time.
func (c *cacheRepository) rewriteMatching(ctx context.Context, funcName, collection string, rewrite func(json.RawMessage) (json.RawMessage, bool, error)) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("key", "data").
		From("cache_entries").
		Where(sq.Like{"key": "%type=" + collection + "%"}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", funcName).Str("collection", collection).Msg("failed to build cache scan query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Str("collection", collection).Msg("failed to scan cached collections")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	type entry struct {
		key  string
		data string
	}
	var entries []entry

	for rows.Next() {
		var e entry
		if scanErr := rows.Scan(&e.key, &e.data); scanErr != nil {
			rows.Close()
			log.Err(scanErr).Str("func", funcName).Msg("failed to scan cache entry row")
			return fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		entries = append(entries, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		rows.Close()
		return fmt.Errorf("error iterating cache entry rows: %w", rowsErr)
	}
	rows.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, e := range entries {
		updated, changed, rewriteErr := rewrite(json.RawMessage(e.data))
		if rewriteErr != nil {
			log.Err(rewriteErr).Str("func", funcName).Str("key", e.key).Msg("failed to rewrite cached collection")
			return rewriteErr
		}
		if !changed {
			continue
		}

		if _, execErr := c.DB.ExecContext(ctx, updateCacheEntryData, string(updated), now, e.key); execErr != nil {
			log.Err(execErr).Str("func", funcName).Str("key", e.key).Msg("failed to persist rewritten cache entry")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}
	}

	return nil
}

// upsertIntoCollection merges record into a cached JSON array by identity.
// Payloads that are not arrays are reported unchanged: single-object
// responses are superseded by the next network-first read instead.
func upsertIntoCollection(payload json.RawMessage, idField string, record map[string]any) (json.RawMessage, bool, error) {
	var list []any
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, false, nil
	}

	want := fmt.Sprint(record[idField])
	for i, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if fmt.Sprint(obj[idField]) != want {
			continue
		}

		if err := mergo.Merge(&obj, record, mergo.WithOverride); err != nil {
			return nil, false, fmt.Errorf("failed to merge record into cached collection: %w", err)
		}
		list[i] = obj

		out, err := json.Marshal(list)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode patched collection: %w", err)
		}
		return out, true, nil
	}

	list = append(list, record)
	out, err := json.Marshal(list)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode patched collection: %w", err)
	}
	return out, true, nil
}

// removeFromCollection drops every element whose idField equals id.
func removeFromCollection(payload json.RawMessage, idField, id string) (json.RawMessage, bool, error) {
	var list []any
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, false, nil
	}

	kept := make([]any, 0, len(list))
	removed := false
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok && fmt.Sprint(obj[idField]) == id {
			removed = true
			continue
		}
		kept = append(kept, el)
	}
	if !removed {
		return nil, false, nil
	}

	out, err := json.Marshal(kept)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode pruned collection: %w", err)
	}
	return out, true, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/models"
)

type queueRepository struct {
	*DB
	logger *logger.Logger
}

// NewQueueRepository constructs the SQLite-backed mutation queue region.
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueRepository) Enqueue(ctx context.Context, item models.SyncQueueItem) (int64, error) {
	log := logger.FromContext(ctx)

	ts := item.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := q.DB.ExecContext(ctx, enqueueItem,
		ts.UTC().Format(queueTimeLayout),
		item.Method,
		item.URL,
		string(item.Body),
		item.Retries,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("method", item.Method).
			Str("url", item.URL).
			Msg("failed to insert sync queue item")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Msg("failed to read assigned queue item id")
		return 0, fmt.Errorf("failed to read assigned queue item id: %w", err)
	}

	return id, nil
}

func (q *queueRepository) ListPending(ctx context.Context) ([]models.SyncQueueItem, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, listPendingItems)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.ListPending").
			Msg("failed to query pending sync queue items")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.SyncQueueItem

	for rows.Next() {
		var item models.SyncQueueItem
		var ts, body string

		if scanErr := rows.Scan(&item.ID, &ts, &item.Method, &item.URL, &body, &item.Retries); scanErr != nil {
			log.Err(scanErr).
				Str("func", "queueRepository.ListPending").
				Msg("failed to scan sync queue row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		parsed, parseErr := time.Parse(queueTimeLayout, ts)
		if parseErr != nil {
			log.Err(parseErr).
				Str("func", "queueRepository.ListPending").
				Int64("id", item.ID).
				Str("timestamp", ts).
				Msg("failed to parse sync queue timestamp")
			return nil, fmt.Errorf("failed to parse sync queue timestamp: %w", parseErr)
		}
		item.Timestamp = parsed
		if body != "" {
			item.Body = []byte(body)
		}

		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "queueRepository.ListPending").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating sync queue rows: %w", rowsErr)
	}

	return items, nil
}

func (q *queueRepository) Remove(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if _, err := q.DB.ExecContext(ctx, removeItem, id); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Remove").
			Int64("id", id).
			Msg("failed to delete sync queue item")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (q *queueRepository) Update(ctx context.Context, item models.SyncQueueItem) error {
	log := logger.FromContext(ctx)

	res, err := q.DB.ExecContext(ctx, updateItem,
		item.Timestamp.UTC().Format(queueTimeLayout),
		item.Method,
		item.URL,
		string(item.Body),
		item.Retries,
		item.ID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Int64("id", item.ID).
			Msg("failed to update sync queue item")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Int64("id", item.ID).
			Msg("failed to get rows affected after update")
		return fmt.Errorf("failed to get rows affected (id=%d): %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w (id=%d)", ErrQueueItemNotFound, item.ID)
	}

	return nil
}

func (q *queueRepository) CountPending(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := q.DB.QueryRowContext(ctx, countPendingItems).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "queueRepository.CountPending").
			Msg("failed to count pending sync queue items")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

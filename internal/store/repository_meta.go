package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nutrisync/nutrisync/internal/logger"
)

type metaRepository struct {
	*DB
	logger *logger.Logger
}

// NewMetaRepository constructs the SQLite-backed metadata region.
func NewMetaRepository(db *DB, logger *logger.Logger) MetaRepository {
	return &metaRepository{
		DB:     db,
		logger: logger,
	}
}

func (m *metaRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	if _, err := m.DB.ExecContext(ctx, upsertMetaEntry, key, value); err != nil {
		log.Err(err).
			Str("func", "metaRepository.Set").
			Str("key", key).
			Msg("failed to upsert meta entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (m *metaRepository) Get(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx)

	var value string
	err := m.DB.QueryRowContext(ctx, getMetaEntry, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrMetaNotFound, key)
	}
	if err != nil {
		log.Err(err).
			Str("func", "metaRepository.Get").
			Str("key", key).
			Msg("failed to query meta entry")
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return value, nil
}

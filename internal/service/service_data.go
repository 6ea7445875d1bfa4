package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/nutrisync/nutrisync/internal/adapter"
	"github.com/nutrisync/nutrisync/internal/connectivity"
	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/internal/store"
	"github.com/nutrisync/nutrisync/models"
)

const apiBasePath = "/api/data"

type dataService struct {
	cache   store.CacheRepository
	queue   store.QueueRepository
	adapter adapter.ServerAdapter
	engine  SyncEngine
	monitor connectivity.Monitor

	logger *logger.Logger
}

// NewDataService builds the offline-aware data access layer on top of the
// local store regions, the server adapter, the sync engine and the
// connectivity monitor.
func NewDataService(storages *store.Storages, serverAdapter adapter.ServerAdapter, engine SyncEngine, monitor connectivity.Monitor, logger *logger.Logger) DataService {
	return &dataService{
		cache:   storages.Cache,
		queue:   storages.Queue,
		adapter: serverAdapter,
		engine:  engine,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *dataService) Get(ctx context.Context, query string) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	body, err := s.adapter.Get(ctx, query)
	if err == nil {
		// fire-and-forget: a failed cache write must not fail the read
		go s.cacheInBackground(ctx, query, body)
		return body, nil
	}

	if errors.Is(err, adapter.ErrUnavailable) {
		s.monitor.SetOnline(false)
	}
	log.Debug().Err(err).
		Str("func", "dataService.Get").
		Str("query", query).
		Msg("network read failed, falling back to cache")

	cached, cacheErr := s.cache.GetCachedResponse(ctx, query)
	if cacheErr != nil {
		if !errors.Is(cacheErr, store.ErrCacheMiss) {
			log.Err(cacheErr).
				Str("func", "dataService.Get").
				Str("query", query).
				Msg("cache lookup failed")
		}
		return nil, fmt.Errorf("%w: %s", ErrNoDataAvailable, query)
	}

	return cached.Data, nil
}

func (s *dataService) Post(ctx context.Context, mutation models.Mutation, patch *models.Patch) error {
	applyOptimistic := func(ctx context.Context) {
		if patch == nil {
			return
		}
		if err := s.cache.ApplyPatch(ctx, *patch); err != nil {
			logger.FromContext(ctx).Warn().Err(err).
				Str("func", "dataService.Post").
				Str("collection", patch.Collection).
				Msg("optimistic patch failed, continuing with enqueue")
		}
	}

	return s.submit(ctx, mutation, applyOptimistic)
}

func (s *dataService) SaveRecord(ctx context.Context, resource string, record map[string]any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", resource, err)
	}
	body, err := json.Marshal(models.PostRequest{Type: resource, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s mutation body: %w", resource, err)
	}

	return s.Post(ctx,
		models.Mutation{Method: http.MethodPost, URL: apiBasePath, Body: body},
		&models.Patch{Collection: resource, IDField: "id", Record: record},
	)
}

func (s *dataService) DeleteRecord(ctx context.Context, resource, id string) error {
	applyOptimistic := func(ctx context.Context) {
		del := models.DeletionPatch{Collection: resource, IDField: "id", ID: id}
		if err := s.cache.ApplyDeletion(ctx, del); err != nil {
			logger.FromContext(ctx).Warn().Err(err).
				Str("func", "dataService.DeleteRecord").
				Str("collection", resource).
				Msg("optimistic deletion failed, continuing with enqueue")
		}
	}

	mutation := models.Mutation{
		Method: http.MethodDelete,
		URL:    apiBasePath + "?type=" + url.QueryEscape(resource) + "&id=" + url.QueryEscape(id),
	}

	return s.submit(ctx, mutation, applyOptimistic)
}

// submit implements the shared write path: optimistic patch, durable enqueue,
// opportunistic immediate send, unconditional sync trigger. Only the enqueue
// step can fail the write.
func (s *dataService) submit(ctx context.Context, mutation models.Mutation, applyOptimistic func(context.Context)) error {
	log := logger.FromContext(ctx)

	applyOptimistic(ctx)

	_, err := s.queue.Enqueue(ctx, models.SyncQueueItem{
		Timestamp: time.Now(),
		Method:    mutation.Method,
		URL:       mutation.URL,
		Body:      mutation.Body,
	})
	if err != nil {
		log.Err(err).
			Str("func", "dataService.submit").
			Str("method", mutation.Method).
			Str("url", mutation.URL).
			Msg("durable enqueue failed")
		return fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}

	if s.monitor.Online() {
		status, _, sendErr := s.adapter.Send(ctx, mutation.Method, mutation.URL, mutation.Body)
		switch {
		case sendErr != nil:
			if errors.Is(sendErr, adapter.ErrUnavailable) {
				s.monitor.SetOnline(false)
			}
			log.Debug().Err(sendErr).
				Str("func", "dataService.submit").
				Msg("immediate send failed, mutation stays queued")
		case status >= http.StatusOK && status < http.StatusMultipleChoices:
			log.Debug().
				Str("func", "dataService.submit").
				Str("method", mutation.Method).
				Str("url", mutation.URL).
				Msg("immediate send succeeded")
		}
	}

	// flush queued-but-not-yet-sent mutations asynchronously
	s.engine.TriggerSync(ctx)

	return nil
}

func (s *dataService) FindOrCreateProduct(ctx context.Context, req models.FindOrCreateProductRequest) (models.FindOrCreateProductResult, error) {
	log := logger.FromContext(ctx)

	if s.monitor.Online() {
		result, err := s.adapter.FindOrCreateProduct(ctx, req)
		if err == nil {
			s.cacheAuthoritativeProduct(ctx, result)
			return result, nil
		}
		if errors.Is(err, adapter.ErrUnavailable) {
			s.monitor.SetOnline(false)
		}
		log.Debug().Err(err).
			Str("func", "dataService.FindOrCreateProduct").
			Msg("online find-or-create failed, falling back to placeholder identity")
	}

	// Offline: fabricate a placeholder identity and replay the request later.
	// The server may dedup to a different canonical id; already-cached
	// references to the placeholder are not rewritten afterwards.
	product := req.Product
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	result := models.FindOrCreateProductResult{
		Success: true,
		Product: product,
		IsNew:   true,
	}

	if err := s.cache.ApplyPatch(ctx, models.Patch{
		Collection: models.ResourceProduct,
		IDField:    "id",
		Record:     productAsRecord(product),
	}); err != nil {
		log.Warn().Err(err).
			Str("func", "dataService.FindOrCreateProduct").
			Msg("optimistic product patch failed, continuing with enqueue")
	}

	if req.AddToFavorites {
		favorite := models.Favorite{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			AddedAt:   time.Now().UTC(),
		}
		result.Favorite = &favorite

		if err := s.cache.ApplyPatch(ctx, models.Patch{
			Collection: models.ResourceFavorite,
			IDField:    "id",
			Record: map[string]any{
				"id":        favorite.ID,
				"productId": favorite.ProductID,
				"addedAt":   favorite.AddedAt.Format(time.RFC3339),
			},
		}); err != nil {
			log.Warn().Err(err).
				Str("func", "dataService.FindOrCreateProduct").
				Msg("optimistic favorite patch failed, continuing with enqueue")
		}
	}

	replay := models.FindOrCreateProductRequest{Product: product, AddToFavorites: req.AddToFavorites}
	body, err := json.Marshal(replay)
	if err != nil {
		return models.FindOrCreateProductResult{}, fmt.Errorf("encode find-or-create replay body: %w", err)
	}

	_, err = s.queue.Enqueue(ctx, models.SyncQueueItem{
		Timestamp: time.Now(),
		Method:    http.MethodPost,
		URL:       apiBasePath + "/findOrCreateProduct",
		Body:      body,
	})
	if err != nil {
		return models.FindOrCreateProductResult{}, fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}

	s.engine.TriggerSync(ctx)

	return result, nil
}

// cacheAuthoritativeProduct makes the server's dedup result visible in cached
// product and favorite lists. Best-effort.
func (s *dataService) cacheAuthoritativeProduct(ctx context.Context, result models.FindOrCreateProductResult) {
	log := logger.FromContext(ctx)

	if err := s.cache.ApplyPatch(ctx, models.Patch{
		Collection: models.ResourceProduct,
		IDField:    "id",
		Record:     productAsRecord(result.Product),
	}); err != nil {
		log.Warn().Err(err).
			Str("func", "dataService.cacheAuthoritativeProduct").
			Msg("failed to cache authoritative product")
	}

	if result.Favorite == nil {
		return
	}
	if err := s.cache.ApplyPatch(ctx, models.Patch{
		Collection: models.ResourceFavorite,
		IDField:    "id",
		Record: map[string]any{
			"id":        result.Favorite.ID,
			"productId": result.Favorite.ProductID,
			"addedAt":   result.Favorite.AddedAt.Format(time.RFC3339),
		},
	}); err != nil {
		log.Warn().Err(err).
			Str("func", "dataService.cacheAuthoritativeProduct").
			Msg("failed to cache authoritative favorite")
	}
}

func (s *dataService) cacheInBackground(ctx context.Context, key string, body []byte) {
	bgCtx := logger.FromContext(ctx).WithContext(context.WithoutCancel(ctx))
	if err := s.cache.CacheResponse(bgCtx, key, body); err != nil {
		s.logger.Warn().Err(err).
			Str("func", "dataService.cacheInBackground").
			Str("key", key).
			Msg("failed to cache response")
	}
}

func productAsRecord(p models.Product) map[string]any {
	return map[string]any{
		"id":       p.ID,
		"name":     p.Name,
		"barcode":  p.Barcode,
		"calories": p.Calories,
		"protein":  p.Protein,
		"fat":      p.Fat,
		"carbs":    p.Carbs,
	}
}

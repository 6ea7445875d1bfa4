package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/nutrisync/nutrisync/internal/config"
	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/models"
)

const (
	findOrCreateProductPath = "/api/data/findOrCreateProduct"
	healthPath              = "/api/health"
)

type httpServerAdapter struct {
	client *resty.Client

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and request
// timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func (h *httpServerAdapter) Get(ctx context.Context, query string) ([]byte, error) {
	log := logger.FromContext(ctx)

	resp, err := h.client.R().
		SetContext(ctx).
		Get(query)
	if err != nil {
		log.Debug().Err(err).
			Str("func", "httpServerAdapter.Get").
			Str("query", query).
			Msg("read request failed before reaching server")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return resp.Body(), nil
}

func (h *httpServerAdapter) Send(ctx context.Context, method, reqURL string, body json.RawMessage) (int, []byte, error) {
	log := logger.FromContext(ctx)

	req := h.client.R().SetContext(ctx)
	if len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody([]byte(body))
	}

	resp, err := req.Execute(method, reqURL)
	if err != nil {
		log.Debug().Err(err).
			Str("func", "httpServerAdapter.Send").
			Str("method", method).
			Str("url", reqURL).
			Msg("mutation request failed before reaching server")
		return 0, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return resp.StatusCode(), resp.Body(), nil
}

func (h *httpServerAdapter) FindOrCreateProduct(ctx context.Context, req models.FindOrCreateProductRequest) (models.FindOrCreateProductResult, error) {
	log := logger.FromContext(ctx)

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(findOrCreateProductPath)
	if err != nil {
		log.Debug().Err(err).
			Str("func", "httpServerAdapter.FindOrCreateProduct").
			Msg("findOrCreateProduct request failed before reaching server")
		return models.FindOrCreateProductResult{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.FindOrCreateProductResult{}, err
	}

	var result models.FindOrCreateProductResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return models.FindOrCreateProductResult{}, fmt.Errorf("decode findOrCreateProduct response: %w", err)
	}

	return result, nil
}

func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(healthPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: health check returned http %d", ErrUnavailable, resp.StatusCode())
	}

	return nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("address %q has no host", raw)
	}

	return strings.TrimRight(parsed.String(), "/"), nil
}

// Package adapter provides transport-layer abstractions for communicating with
// the nutrition tracker server.
//
// The primary abstraction is [ServerAdapter], which decouples the data and
// sync layers from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrRejected] for 4xx, [ErrServerError] for 5xx).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/nutrisync/nutrisync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the tracker
// server. Implementations are responsible for serialisation and for mapping
// transport-level errors to the sentinel values defined in this package.
type ServerAdapter interface {
	// Get performs a read against the tracker API. query is the path plus
	// query string relative to the server base URL (e.g.
	// "/api/data?type=weight&user_id=7") and doubles as the cache key for the
	// response. Returns the raw response body on 2xx; wraps [ErrUnavailable]
	// when the server cannot be reached, [ErrRejected] on 4xx and
	// [ErrServerError] on 5xx.
	Get(ctx context.Context, query string) ([]byte, error)

	// Send replays a queued mutation verbatim. It returns the HTTP status
	// code and response body so the caller can decide whether the mutation is
	// settled (2xx), permanently rejected (4xx) or worth retrying (5xx). err
	// is non-nil only when no HTTP response was obtained at all; in that case
	// it wraps [ErrUnavailable].
	Send(ctx context.Context, method, url string, body json.RawMessage) (int, []byte, error)

	// FindOrCreateProduct asks the server to deduplicate a product by barcode
	// or name, creating it when no match exists, and optionally registering a
	// favorite in the same call.
	FindOrCreateProduct(ctx context.Context, req models.FindOrCreateProductRequest) (models.FindOrCreateProductResult, error)

	// Ping probes server reachability via the health endpoint. A nil return
	// means the server answered; any error means it is unreachable.
	Ping(ctx context.Context) error
}

package models

import "encoding/json"

// PostRequest is the body of every create/update call to the tracker API.
// The server upserts Data into the collection named by Type (find-by-id,
// merge-or-insert).
type PostRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// APIResponse is the generic tracker API reply for writes.
type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FindOrCreateProductRequest asks the server to deduplicate a product by its
// strong key (barcode) first and its normalized name second, creating it only
// when neither matches.
type FindOrCreateProductRequest struct {
	Product      Product `json:"product"`
	AddToFavorites bool  `json:"addToFavorites,omitempty"`
}

// FindOrCreateProductResult is the server's authoritative answer. When the
// request was served offline the client fabricates a placeholder result with
// a locally-unique id; the server may later assign a different canonical
// identity on replay.
type FindOrCreateProductResult struct {
	Success     bool      `json:"success"`
	Product     Product   `json:"product"`
	Favorite    *Favorite `json:"favorite,omitempty"`
	IsNew       bool      `json:"isNew"`
	WasExisting bool      `json:"wasExisting"`
}

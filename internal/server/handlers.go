package server

import (
	"encoding/json"
	"net/http"

	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/models"
)

// Handler serves the tracker REST API over a [FileStore].
type Handler struct {
	store *FileStore

	logger *logger.Logger
}

// NewHandler constructs the tracker API handler.
func NewHandler(store *FileStore, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// getData handles GET /api/data?type=<resource>&<filters>.
func (h *Handler) getData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resource := query.Get("type")
	if resource == "" {
		h.writeError(w, http.StatusBadRequest, "missing type parameter")
		return
	}

	filters := make(map[string]string)
	for key, values := range query {
		if key == "type" || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	h.writeJSON(w, http.StatusOK, h.store.List(resource, filters))
}

// postData handles POST /api/data with body {type, data}: server-side upsert
// by id.
func (h *Handler) postData(w http.ResponseWriter, r *http.Request) {
	var req models.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Type == "" {
		h.writeError(w, http.StatusBadRequest, "missing type field")
		return
	}

	var record map[string]any
	if err := json.Unmarshal(req.Data, &record); err != nil {
		h.writeError(w, http.StatusBadRequest, "data must be a JSON object")
		return
	}
	if record["id"] == nil || record["id"] == "" {
		h.writeError(w, http.StatusBadRequest, "record must carry an id")
		return
	}

	if err := h.store.Upsert(req.Type, record); err != nil {
		logger.FromRequest(r).Err(err).Str("type", req.Type).Msg("upsert failed")
		h.writeError(w, http.StatusInternalServerError, "failed to persist record")
		return
	}

	h.writeJSON(w, http.StatusOK, models.APIResponse{Success: true})
}

// deleteData handles DELETE /api/data?type=<resource>&id=<id>. Deleting an
// absent id succeeds.
func (h *Handler) deleteData(w http.ResponseWriter, r *http.Request) {
	resource := r.URL.Query().Get("type")
	id := r.URL.Query().Get("id")
	if resource == "" || id == "" {
		h.writeError(w, http.StatusBadRequest, "missing type or id parameter")
		return
	}

	if err := h.store.Delete(resource, id); err != nil {
		logger.FromRequest(r).Err(err).Str("type", resource).Msg("delete failed")
		h.writeError(w, http.StatusInternalServerError, "failed to persist deletion")
		return
	}

	h.writeJSON(w, http.StatusOK, models.APIResponse{Success: true})
}

// findOrCreateProduct handles POST /api/data/findOrCreateProduct.
func (h *Handler) findOrCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.FindOrCreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Product.Name == "" && req.Product.Barcode == "" {
		h.writeError(w, http.StatusBadRequest, "product needs a name or a barcode")
		return
	}

	result, err := h.store.FindOrCreateProduct(req.Product, req.AddToFavorites)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("find-or-create failed")
		h.writeError(w, http.StatusInternalServerError, "failed to persist product")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// health handles GET /api/health, the connectivity probe target.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, models.APIResponse{Error: message})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/models"
)

// FileStore persists every collection to a single JSON file. One global lock
// guards all mutations; each mutation rewrites the file before returning, so
// the on-disk state is always the last acknowledged state.
type FileStore struct {
	path   string
	logger *logger.Logger

	mu          sync.RWMutex
	collections map[string][]map[string]any
}

// NewFileStore loads (or initialises) the JSON data file at path.
func NewFileStore(path string, log *logger.Logger) (*FileStore, error) {
	fs := &FileStore{
		path:        path,
		logger:      log,
		collections: make(map[string][]map[string]any),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", path).Msg("data file not found, starting empty")
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fs.collections); err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", path, err)
		}
	}

	return fs, nil
}

// List returns the records of a resource collection matching every filter.
// Filter values are compared against record fields as strings.
func (f *FileStore) List(resource string, filters map[string]string) []map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]map[string]any, 0)
	for _, record := range f.collections[resource] {
		if matchesFilters(record, filters) {
			out = append(out, record)
		}
	}
	return out
}

// Upsert merges record into the collection by id, inserting when absent.
func (f *FileStore) Upsert(resource string, record map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := fmt.Sprint(record["id"])
	list := f.collections[resource]
	found := false
	for i, existing := range list {
		if fmt.Sprint(existing["id"]) != id {
			continue
		}
		for k, v := range record {
			existing[k] = v
		}
		list[i] = existing
		found = true
		break
	}
	if !found {
		list = append(list, record)
	}
	f.collections[resource] = list

	return f.persistLocked()
}

// Delete removes the record with the given id. Deleting an absent id is not
// an error.
func (f *FileStore) Delete(resource, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.collections[resource]
	kept := make([]map[string]any, 0, len(list))
	for _, record := range list {
		if fmt.Sprint(record["id"]) == id {
			continue
		}
		kept = append(kept, record)
	}
	f.collections[resource] = kept

	return f.persistLocked()
}

// FindOrCreateProduct deduplicates a product by barcode first, then by
// normalized name, creating it when no match exists. When addToFavorites is
// set and the product is not yet a favorite, a favorite record is created in
// the same call.
func (f *FileStore) FindOrCreateProduct(product models.Product, addToFavorites bool) (models.FindOrCreateProductResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, existing := f.findProductLocked(product)
	if !existing {
		if product.ID == "" {
			product.ID = uuid.NewString()
		}
		record = productRecord(product)
		f.collections[models.ResourceProduct] = append(f.collections[models.ResourceProduct], record)
	}

	result := models.FindOrCreateProductResult{
		Success:     true,
		Product:     recordToProduct(record),
		IsNew:       !existing,
		WasExisting: existing,
	}

	if addToFavorites {
		favorite := f.favoriteForProductLocked(result.Product.ID)
		if favorite == nil {
			fav := map[string]any{
				"id":        uuid.NewString(),
				"productId": result.Product.ID,
				"addedAt":   time.Now().UTC().Format(time.RFC3339),
			}
			f.collections[models.ResourceFavorite] = append(f.collections[models.ResourceFavorite], fav)
			favorite = fav
		}
		addedAt, _ := time.Parse(time.RFC3339, fmt.Sprint(favorite["addedAt"]))
		result.Favorite = &models.Favorite{
			ID:        fmt.Sprint(favorite["id"]),
			ProductID: result.Product.ID,
			AddedAt:   addedAt,
		}
	}

	if err := f.persistLocked(); err != nil {
		return models.FindOrCreateProductResult{}, err
	}
	return result, nil
}

func (f *FileStore) findProductLocked(product models.Product) (map[string]any, bool) {
	products := f.collections[models.ResourceProduct]

	if product.Barcode != "" {
		for _, record := range products {
			if fmt.Sprint(record["barcode"]) == product.Barcode {
				return record, true
			}
		}
	}

	want := normalizeName(product.Name)
	if want == "" {
		return nil, false
	}
	for _, record := range products {
		if normalizeName(fmt.Sprint(record["name"])) == want {
			return record, true
		}
	}
	return nil, false
}

func (f *FileStore) favoriteForProductLocked(productID string) map[string]any {
	for _, record := range f.collections[models.ResourceFavorite] {
		if fmt.Sprint(record["productId"]) == productID {
			return record
		}
	}
	return nil
}

// persistLocked writes the data file via a temp-file rename. Callers hold the
// write lock.
func (f *FileStore) persistLocked() error {
	raw, err := json.MarshalIndent(f.collections, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func matchesFilters(record map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		value, ok := record[key]
		if !ok || fmt.Sprint(value) != want {
			return false
		}
	}
	return true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func productRecord(p models.Product) map[string]any {
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

func recordToProduct(record map[string]any) models.Product {
	raw, err := json.Marshal(record)
	if err != nil {
		return models.Product{}
	}
	var p models.Product
	_ = json.Unmarshal(raw, &p)
	return p
}

package server

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "tracker-data.json"), logger.Nop())
	require.NoError(t, err)
	return fs
}

func TestFileStore_UpsertAndList(t *testing.T) {
	fs := newTestFileStore(t)

	require.NoError(t, fs.Upsert(models.ResourceWeight, map[string]any{
		"id": "w1", "weight": 81.4, "user_id": "7",
	}))
	require.NoError(t, fs.Upsert(models.ResourceWeight, map[string]any{
		"id": "w2", "weight": 80.9, "user_id": "8",
	}))

	t.Run("filters by record fields", func(t *testing.T) {
		got := fs.List(models.ResourceWeight, map[string]string{"user_id": "7"})
		require.Len(t, got, 1)
		assert.Equal(t, "w1", got[0]["id"])
	})

	t.Run("upsert merges by id", func(t *testing.T) {
		require.NoError(t, fs.Upsert(models.ResourceWeight, map[string]any{
			"id": "w1", "weight": 79.5,
		}))

		got := fs.List(models.ResourceWeight, nil)
		require.Len(t, got, 2)
		for _, record := range got {
			if record["id"] == "w1" {
				assert.Equal(t, 79.5, record["weight"])
				assert.Equal(t, "7", record["user_id"], "fields absent from the upsert survive")
			}
		}
	})

	t.Run("unknown collection lists empty", func(t *testing.T) {
		assert.Empty(t, fs.List("bogus", nil))
	})
}

func TestFileStore_Delete(t *testing.T) {
	fs := newTestFileStore(t)

	require.NoError(t, fs.Upsert(models.ResourceFavorite, map[string]any{"id": "fav1"}))
	require.NoError(t, fs.Delete(models.ResourceFavorite, "fav1"))
	assert.Empty(t, fs.List(models.ResourceFavorite, nil))

	// deleting an absent id is not an error
	assert.NoError(t, fs.Delete(models.ResourceFavorite, "missing"))
}

func TestFileStore_SurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker-data.json")

	fs, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, fs.Upsert(models.ResourceProduct, map[string]any{"id": "p1", "name": "Oats"}))

	reloaded, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	got := reloaded.List(models.ResourceProduct, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Oats", got[0]["name"])
}

func TestFileStore_FindOrCreateProduct(t *testing.T) {
	fs := newTestFileStore(t)

	t.Run("creates when no match", func(t *testing.T) {
		result, err := fs.FindOrCreateProduct(models.Product{Name: "Oats", Barcode: "4001234"}, false)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.IsNew)
		assert.False(t, result.WasExisting)
		assert.NotEmpty(t, result.Product.ID)
	})

	t.Run("dedups by barcode", func(t *testing.T) {
		result, err := fs.FindOrCreateProduct(models.Product{Name: "Different Name", Barcode: "4001234"}, false)
		require.NoError(t, err)
		assert.True(t, result.WasExisting)
		assert.Equal(t, "Oats", result.Product.Name)
	})

	t.Run("dedups by normalized name", func(t *testing.T) {
		result, err := fs.FindOrCreateProduct(models.Product{Name: "  oats "}, false)
		require.NoError(t, err)
		assert.True(t, result.WasExisting)
	})

	t.Run("registers favorite once", func(t *testing.T) {
		first, err := fs.FindOrCreateProduct(models.Product{Name: "Oats"}, true)
		require.NoError(t, err)
		require.NotNil(t, first.Favorite)

		second, err := fs.FindOrCreateProduct(models.Product{Name: "Oats"}, true)
		require.NoError(t, err)
		require.NotNil(t, second.Favorite)
		assert.Equal(t, first.Favorite.ID, second.Favorite.ID)

		assert.Len(t, fs.List(models.ResourceFavorite, nil), 1)
	})
}

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/config"
	"github.com/nutrisync/nutrisync/internal/logger"
	"github.com/nutrisync/nutrisync/models"
)

func newTestAdapter(t *testing.T, serverURL string) ServerAdapter {
	t.Helper()

	a, err := NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: serverURL}, logger.Nop())
	require.NoError(t, err)
	return a
}

func TestNewHTTPServerAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: ""}, logger.Nop())
	assert.Error(t, err)

	// a bare host:port is accepted and upgraded to http
	a, err := NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: "localhost:8080"}, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/data", r.URL.Path)
		assert.Equal(t, "weight", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"w1","weight":81.4}]`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	body, err := a.Get(context.Background(), "/api/data?type=weight&user_id=7")

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"w1","weight":81.4}]`, string(body))
}

func TestGet_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "bad request maps to rejected", status: http.StatusBadRequest, wantErr: ErrRejected},
		{name: "not found maps to rejected", status: http.StatusNotFound, wantErr: ErrRejected},
		{name: "internal error maps to server error", status: http.StatusInternalServerError, wantErr: ErrServerError},
		{name: "bad gateway maps to server error", status: http.StatusBadGateway, wantErr: ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			a := newTestAdapter(t, srv.URL)
			_, err := a.Get(context.Background(), "/api/data?type=weight")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGet_Unreachable(t *testing.T) {
	// a server that is immediately closed guarantees a connection error
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Get(context.Background(), "/api/data?type=weight")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSend_ReturnsStatusWithoutClassifying(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/data", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)

		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"unknown type"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	status, body, err := a.Send(context.Background(), http.MethodPost, "/api/data",
		json.RawMessage(`{"type":"bogus","data":{}}`))

	// a 4xx answer is still a successful transport exchange
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"type":"bogus","data":{}}`, string(gotBody))
	assert.Contains(t, string(body), "unknown type")
}

func TestSend_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "fav1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	status, _, err := a.Send(context.Background(), http.MethodDelete, "/api/data?type=favorite&id=fav1", nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestSend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, _, err := a.Send(context.Background(), http.MethodPost, "/api/data", json.RawMessage(`{}`))

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFindOrCreateProduct(t *testing.T) {
	want := models.FindOrCreateProductResult{
		Success:     true,
		Product:     models.Product{ID: "p42", Name: "Oats", Barcode: "4001234"},
		IsNew:       false,
		WasExisting: true,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/data/findOrCreateProduct", r.URL.Path)

		var req models.FindOrCreateProductRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "4001234", req.Product.Barcode)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.FindOrCreateProduct(context.Background(), models.FindOrCreateProductRequest{
		Product: models.Product{Name: "Oats", Barcode: "4001234"},
	})

	require.NoError(t, err)
	assert.Equal(t, want.Product.ID, got.Product.ID)
	assert.True(t, got.WasExisting)
}

func TestPing(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		a := newTestAdapter(t, srv.URL)
		assert.NoError(t, a.Ping(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		a := newTestAdapter(t, srv.URL)
		assert.ErrorIs(t, a.Ping(context.Background()), ErrUnavailable)
	})

	t.Run("unhealthy status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		a := newTestAdapter(t, srv.URL)
		assert.ErrorIs(t, a.Ping(context.Background()), ErrUnavailable)
	})
}

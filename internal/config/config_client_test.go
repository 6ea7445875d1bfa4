package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClientConfig() *ClientConfig {
	return &ClientConfig{
		Adapter: ClientAdapter{
			HTTPAddress:    "http://localhost:8080",
			RequestTimeout: 15 * time.Second,
		},
		Storage: ClientStorage{DB: ClientDB{DSN: "/tmp/client.db"}},
		Workers: ClientWorkers{
			SyncInterval: 2 * time.Minute,
			PollInterval: 30 * time.Second,
		},
	}
}

func TestClientConfigValidate_Valid(t *testing.T) {
	require.NoError(t, validClientConfig().validate())
}

func TestClientConfigValidate_EmptyDSN(t *testing.T) {
	cfg := validClientConfig()
	cfg.Storage.DB.DSN = ""

	err := cfg.validate()
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

func TestClientConfigValidate_MissingAdapterAddress(t *testing.T) {
	cfg := validClientConfig()
	cfg.Adapter.HTTPAddress = ""

	err := cfg.validate()
	assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
}

func TestClientConfigValidate_ZeroIntervals(t *testing.T) {
	cfg := validClientConfig()
	cfg.Workers.SyncInterval = 0

	err := cfg.validate()
	assert.ErrorIs(t, err, ErrInvalidWorkerConfigs)
}

package config

import (
	"fmt"
	"time"
)

// ServerConfig is the tracker-server-specific configuration view assembled
// from [StructuredConfig].
type ServerConfig struct {
	// HTTPAddress is the TCP listen address.
	HTTPAddress string
	// RequestTimeout bounds a single inbound request.
	RequestTimeout time.Duration
	// DataFile is the JSON file all collections are persisted to.
	DataFile string
}

// Defaults applied by [GetServerConfig] when the merged configuration leaves
// the corresponding field empty.
const (
	DefaultServerAddress        = "localhost:8080"
	DefaultServerRequestTimeout = 30 * time.Second
	DefaultServerDataFile       = "tracker-data.json"
)

// GetServerConfig builds and validates a server-specific config view from the
// merged structured configuration, applying defaults for every empty field.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		HTTPAddress:    cfg.Server.HTTPAddress,
		RequestTimeout: cfg.Server.RequestTimeout,
		DataFile:       cfg.Storage.Files.DataFile,
	}

	if serverCfg.HTTPAddress == "" {
		serverCfg.HTTPAddress = DefaultServerAddress
	}
	if serverCfg.RequestTimeout <= 0 {
		serverCfg.RequestTimeout = DefaultServerRequestTimeout
	}
	if serverCfg.DataFile == "" {
		serverCfg.DataFile = DefaultServerDataFile
	}

	return serverCfg, serverCfg.validate()
}

func (c *ServerConfig) validate() error {
	if c.HTTPAddress == "" {
		return fmt.Errorf("%w: empty HTTP address", ErrInvalidServerConfigs)
	}
	if c.DataFile == "" {
		return fmt.Errorf("%w: empty data file path", ErrInvalidServerConfigs)
	}
	return nil
}

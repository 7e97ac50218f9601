package storage

import (
	"fmt"

	"relay-router/internal/common/errors"
	"relay-router/internal/config"
)

// GenericConfig is an adapter-neutral configuration map. Adapters
// convert it into their concrete config during Create.
type GenericConfig map[string]interface{}

func (c GenericConfig) Validate() error {
	return nil
}

func (c GenericConfig) GetType() string {
	if t, ok := c["type"].(string); ok {
		return t
	}
	return ""
}

func (c GenericConfig) GetConnectionString() string {
	if s, ok := c["connection_string"].(string); ok {
		return s
	}
	return ""
}

// GetString returns a string value from the config map, or empty.
func (c GenericConfig) GetString(key string) string {
	if s, ok := c[key].(string); ok {
		return s
	}
	return ""
}

// NewStorage creates a storage adapter based on application
// configuration. The adapter packages must be imported for side
// effects so their factories are registered.
func NewStorage(cfg *config.Config) (Storage, error) {
	var storageConfig StorageConfig
	storageType := cfg.DatabaseType

	switch storageType {
	case "sqlite":
		storageConfig = GenericConfig{
			"path": cfg.DatabasePath,
		}

	case "postgres", "postgresql":
		storageType = "postgres"
		storageConfig = GenericConfig{
			"host":     cfg.PostgresHost,
			"port":     cfg.PostgresPort,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
		}

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}

	return Create(storageType, storageConfig)
}

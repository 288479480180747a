package storage

import (
	"fmt"
	"strconv"

	"webhook-fanout/internal/common/errors"
	"webhook-fanout/internal/config"
	"webhook-fanout/internal/routing"
)

// NewStorage creates the route store selected by STORE_TYPE.
// The memory type has no store and yields nil.
//
// Adapters register themselves on import; the caller must import the
// adapter packages it wants available.
func NewStorage(cfg *config.Config) (routing.Store, error) {
	storageConfig, err := ConfigFor(cfg)
	if err != nil {
		return nil, err
	}
	if storageConfig == nil {
		return nil, nil
	}

	if !DefaultRegistry.IsRegistered(cfg.StoreType) {
		return nil, errors.ConfigError(fmt.Sprintf("storage type %s is not available", cfg.StoreType))
	}

	store, err := Create(cfg.StoreType, storageConfig)
	if err != nil {
		return nil, errors.StorageError(fmt.Sprintf("failed to create %s store", cfg.StoreType), err)
	}
	return store, nil
}

// ConfigFor translates process configuration into a GenericConfig for the
// selected store type.
func ConfigFor(cfg *config.Config) (StorageConfig, error) {
	switch cfg.StoreType {
	case config.StoreMemory:
		return nil, nil

	case config.StoreFile:
		return GenericConfig{
			"type": config.StoreFile,
			"path": cfg.RoutesFile,
		}, nil

	case config.StoreSQLite:
		return GenericConfig{
			"type": config.StoreSQLite,
			"path": cfg.DatabasePath,
		}, nil

	case config.StorePostgres:
		port, _ := strconv.Atoi(cfg.PostgresPort)
		return GenericConfig{
			"type":     config.StorePostgres,
			"host":     cfg.PostgresHost,
			"port":     port,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
		}, nil

	case config.StoreRedis:
		db, _ := strconv.Atoi(cfg.RedisDB)
		poolSize, _ := strconv.Atoi(cfg.RedisPoolSize)
		return GenericConfig{
			"type":      config.StoreRedis,
			"address":   cfg.RedisAddress,
			"password":  cfg.RedisPassword,
			"db":        db,
			"pool_size": poolSize,
			"key":       cfg.RedisKey,
		}, nil

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported store type: %s", cfg.StoreType))
	}
}

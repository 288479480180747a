package redis

import (
	"fmt"

	"webhook-fanout/internal/routing"
	"webhook-fanout/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (routing.Store, error) {
	switch c := config.(type) {
	case *Config:
		return NewAdapter(c)
	case storage.GenericConfig:
		return NewAdapter(&Config{
			Address:  c.String("address"),
			Password: c.String("password"),
			DB:       c.Int("db", 0),
			PoolSize: c.Int("pool_size", 10),
			Key:      c.String("key"),
		})
	default:
		return nil, fmt.Errorf("invalid config type for Redis storage")
	}
}

func (f *Factory) GetType() string {
	return "redis"
}

func init() {
	storage.Register("redis", &Factory{})
}

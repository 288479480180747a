package postgres

import (
	"context"
	"fmt"
	"time"

	"webhook-fanout/internal/routing"
	"webhook-fanout/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (routing.Store, error) {
	var pgConfig *Config
	switch c := config.(type) {
	case *Config:
		pgConfig = c
	case storage.GenericConfig:
		pgConfig = &Config{
			Host:     c.String("host"),
			Port:     c.Int("port", 5432),
			Database: c.String("database"),
			Username: c.String("username"),
			Password: c.String("password"),
			SSLMode:  c.String("sslmode"),
		}
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return NewAdapter(ctx, pgConfig)
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	storage.Register("postgres", &Factory{})
}

package file

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
		return NewAdapter(&Config{Path: c.String("path"), Format: c.String("format")})
	default:
		return nil, fmt.Errorf("invalid config type for file storage")
	}
}

func (f *Factory) GetType() string {
	return "file"
}

func init() {
	storage.Register("file", &Factory{})
}

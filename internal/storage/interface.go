package storage

import (
	"webhook-fanout/internal/routing"
)

// StorageConfig describes how to reach one kind of route store.
type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

// StorageFactory builds a routing.Store from a StorageConfig.
type StorageFactory interface {
	Create(config StorageConfig) (routing.Store, error)
	GetType() string
}

// GenericConfig is a simple map-based implementation of StorageConfig
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil // Basic configs don't need validation
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}

// String returns the value at key, or "" when absent or not a string.
func (gc GenericConfig) String(key string) string {
	s, _ := gc[key].(string)
	return s
}

// Int returns the value at key, or def when absent or not an int.
func (gc GenericConfig) Int(key string, def int) int {
	if n, ok := gc[key].(int); ok {
		return n
	}
	return def
}

// Bool returns the value at key, or false.
func (gc GenericConfig) Bool(key string) bool {
	b, _ := gc[key].(bool)
	return b
}

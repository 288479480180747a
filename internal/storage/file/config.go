package file

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	Path string
	// Format is derived from the extension when empty: .yaml and .yml select
	// YAML, anything else JSON.
	Format        string
	WatchDebounce time.Duration
}

func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("routes file path is required")
	}

	if c.Format == "" {
		switch strings.ToLower(filepath.Ext(c.Path)) {
		case ".yaml", ".yml":
			c.Format = FormatYAML
		default:
			c.Format = FormatJSON
		}
	}
	if c.Format != FormatJSON && c.Format != FormatYAML {
		return fmt.Errorf("unsupported routes file format: %s", c.Format)
	}

	if c.WatchDebounce <= 0 {
		c.WatchDebounce = 250 * time.Millisecond
	}
	return nil
}

func (c *Config) GetType() string {
	return "file"
}

func (c *Config) GetConnectionString() string {
	return c.Path
}

func DefaultConfig() *Config {
	return &Config{
		Path: "./routes.json",
	}
}

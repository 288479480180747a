package sqlite

import (
	"fmt"
)

type Config struct {
	DatabasePath string
}

func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

func (c *Config) GetType() string {
	return "sqlite"
}

// GetConnectionString enables foreign keys and a busy timeout for the
// go-sqlite3 driver.
func (c *Config) GetConnectionString() string {
	return "file:" + c.DatabasePath + "?_foreign_keys=on&_busy_timeout=5000"
}

func DefaultConfig() *Config {
	return &Config{
		DatabasePath: "./webhook_fanout.db",
	}
}

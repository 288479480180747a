package redis

import (
	"fmt"
)

type Config struct {
	Address  string
	Password string
	DB       int
	PoolSize int
	// Key is the hash holding the routes; change notifications are published
	// on Key + ":changed".
	Key string
}

func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("redis address is required")
	}
	if c.DB < 0 || c.DB > 15 {
		return fmt.Errorf("redis db must be between 0 and 15")
	}
	if c.Key == "" {
		c.Key = "fanout:routes"
	}
	return nil
}

func (c *Config) GetType() string {
	return "redis"
}

func (c *Config) GetConnectionString() string {
	return fmt.Sprintf("redis://%s/%d", c.Address, c.DB)
}

func (c *Config) channel() string {
	return c.Key + ":changed"
}

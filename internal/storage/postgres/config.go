package postgres

import (
	"fmt"
	"net/url"
)

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("PostgreSQL host is required")
	}

	if c.Port <= 0 {
		c.Port = 5432 // default PostgreSQL port
	}

	if c.Database == "" {
		return fmt.Errorf("PostgreSQL database name is required")
	}

	if c.Username == "" {
		return fmt.Errorf("PostgreSQL username is required")
	}

	if c.SSLMode == "" {
		c.SSLMode = "prefer"
	}

	if c.MaxConns <= 0 {
		c.MaxConns = 4
	}

	return nil
}

func (c *Config) GetType() string {
	return "postgres"
}

func (c *Config) GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode, c.MaxConns)
}

func NewConfigFromURL(connStr string) (*Config, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("invalid PostgreSQL URL scheme: %s", u.Scheme)
	}

	config := &Config{
		Host:     u.Hostname(),
		Username: u.User.Username(),
		SSLMode:  "prefer",
		Port:     5432,
	}
	if len(u.Path) > 1 {
		config.Database = u.Path[1:]
	}

	if u.Port() != "" {
		port := 5432
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err == nil {
			config.Port = port
		}
	}

	if password, ok := u.User.Password(); ok {
		config.Password = password
	}

	if sslMode := u.Query().Get("sslmode"); sslMode != "" {
		config.SSLMode = sslMode
	}

	return config, nil
}

func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		Database: "webhook_fanout",
		Username: "postgres",
		SSLMode:  "disable",
	}
}

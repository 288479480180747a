// Package redis stores the routing table in a Redis hash, one field per
// route holding a JSON array of targets. Instances sharing the hash notify
// each other of saves over pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lucsky/cuid"

	"webhook-fanout/internal/common/logging"
	redisclient "webhook-fanout/internal/redis"
)

type Adapter struct {
	client     *redisclient.Client
	config     *Config
	instanceID string
	logger     logging.Logger
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Redis config: %w", err)
	}

	client, err := redisclient.NewClient(&redisclient.Config{
		Address:  config.Address,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client:     client,
		config:     config,
		instanceID: cuid.New(),
		logger: logging.GetGlobalLogger().WithFields(
			logging.String("component", "redis_store"),
			logging.String("key", config.Key),
		),
	}, nil
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) Health(ctx context.Context) error {
	return a.client.Health(ctx)
}

func (a *Adapter) Load(ctx context.Context) (map[string][]string, error) {
	fields, err := a.client.HashGetAll(ctx, a.config.Key)
	if err != nil {
		return nil, err
	}

	routes := make(map[string][]string, len(fields))
	for id, raw := range fields {
		var targets []string
		if err := json.Unmarshal([]byte(raw), &targets); err != nil {
			return nil, fmt.Errorf("invalid targets for route %s: %w", id, err)
		}
		if targets == nil {
			targets = []string{}
		}
		routes[id] = targets
	}
	return routes, nil
}

// Save replaces the hash and tells other instances about it.
func (a *Adapter) Save(ctx context.Context, routes map[string][]string) error {
	fields := make(map[string]string, len(routes))
	for id, targets := range routes {
		if targets == nil {
			targets = []string{}
		}
		data, err := json.Marshal(targets)
		if err != nil {
			return fmt.Errorf("failed to encode targets for route %s: %w", id, err)
		}
		fields[id] = string(data)
	}

	if err := a.client.ReplaceHash(ctx, a.config.Key, fields); err != nil {
		return err
	}

	if err := a.client.Publish(ctx, a.config.channel(), a.instanceID); err != nil {
		// the hash is already written; peers catch up on their next resync
		a.logger.Warn("Failed to publish route change", logging.Err(err))
	}
	return nil
}

// Watch calls onChange when another instance saves the routes.
func (a *Adapter) Watch(ctx context.Context, onChange func()) error {
	pubsub := a.client.Subscribe(ctx, a.config.channel())
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", a.config.channel(), err)
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if msg.Payload == a.instanceID {
				continue
			}
			a.logger.Info("Routes changed by another instance, reloading",
				logging.String("origin", msg.Payload))
			onChange()
		}
	}
}

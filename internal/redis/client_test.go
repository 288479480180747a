package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(&Config{
		Address:  mr.Addr(),
		PoolSize: 10,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewClient(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewClient(nil)
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		config := &Config{Address: mr.Addr()}
		client, err := NewClient(config)
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 10, config.PoolSize)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		_, err = NewClient(&Config{Address: addr})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

func TestClient_Health(t *testing.T) {
	client, mr := setupTestRedis(t)

	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestClient_Hash(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	fields, err := client.HashGetAll(ctx, "routes")
	require.NoError(t, err)
	assert.Empty(t, fields)

	require.NoError(t, client.ReplaceHash(ctx, "routes", map[string]string{"a": "1", "b": "2"}))
	assert.Equal(t, "1", mr.HGet("routes", "a"))

	require.NoError(t, client.ReplaceHash(ctx, "routes", map[string]string{"c": "3"}))
	fields, err = client.HashGetAll(ctx, "routes")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, fields)

	require.NoError(t, client.ReplaceHash(ctx, "routes", nil))
	assert.False(t, mr.Exists("routes"))
}

func TestClient_HashWrongType(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("routes", "plain string"))

	_, err := client.HashGetAll(context.Background(), "routes")
	assert.Error(t, err)
}

func TestClient_PubSub(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	pubsub := client.Subscribe(ctx, "changes")
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, "changes", "hello"))

	select {
	case msg := <-pubsub.Channel():
		assert.Equal(t, "hello", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
}

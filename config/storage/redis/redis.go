// Package redis provides Redis cache server implimentation logic, it backs the submission ledger.
package redis

import (
	"context"
	"fmt"
	"time"

	config "github.com/crabzie/foldbatch/config/utils"

	"github.com/gofiber/storage/redis/v3"
	redigo "github.com/redis/go-redis/v9"
)

// Redis holds the raw client for health checks & the fiber storage used by the ledger
type Redis struct {
	Client  redigo.UniversalClient
	Storage *redis.Storage
}

// New creates a new instance of Redis
func New(ctx context.Context, config *config.Redis) (*Redis, error) {
	client := redigo.NewUniversalClient(&redigo.UniversalOptions{
		Addrs:           []string{config.Addr},
		Password:        config.Password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 1 * time.Second,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", config.Addr, err)
	}

	storage := redis.NewFromConnection(client)

	return &Redis{Client: client, Storage: storage}, nil
}

// Health pings the server
func (r *Redis) Health(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Close closes the underlying connection pool
func (r *Redis) Close() error {
	return r.Storage.Close()
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a redis tile backend.
type RedisOptions struct {
	// Host and Port locate the server. Host defaults to "127.0.0.1", Port
	// to 6379.
	Host string
	Port int

	// Password is optional.
	Password string

	// DB selects the redis database.
	DB int

	// Prefix is prepended to every tile key.
	Prefix string
}

// Redis serves tiles stored under <prefix><z>:<x>:<y>.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to a redis tile store and verifies the connection.
func NewRedis(opts RedisOptions) (*Redis, error) {
	host := opts.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := opts.Port
	if port == 0 {
		port = 6379
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis tile cache %s:%d: %w", host, port, err)
	}

	return &Redis{client: client, prefix: opts.Prefix}, nil
}

// Tile fetches one tile value.
func (r *Redis) Tile(ctx context.Context, z, x, y int) ([]byte, error) {
	key := fmt.Sprintf("%s%d:%d:%d", r.prefix, z, x, y)
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading tile %d/%d/%d from redis: %w", z, x, y, err)
	}
	return data, nil
}

// Close closes the client connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

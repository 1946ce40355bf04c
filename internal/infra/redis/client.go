// Package redis wraps Redis operations for the pending-delivery queue.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dispatchd/dispatchd/internal/core/domain"
)

// Client wraps Redis operations for the pending-delivery queue.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func queueKey(target string) string {
	return fmt.Sprintf("pending_deliveries:%s", target)
}

// PushDelivery appends a delivery to its target's pending queue.
func (c *Client) PushDelivery(ctx context.Context, d domain.Delivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal delivery: %w", err)
	}
	if err := c.rdb.RPush(ctx, queueKey(d.Target), data).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

// PopDelivery pops the oldest pending delivery for target, blocking up to
// timeout. found is false when the queue stayed empty.
func (c *Client) PopDelivery(
	ctx context.Context,
	target string,
	timeout time.Duration,
) (d domain.Delivery, found bool, err error) {
	res, err := c.rdb.BLPop(ctx, timeout, queueKey(target)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Delivery{}, false, nil
	}
	if err != nil {
		return domain.Delivery{}, false, fmt.Errorf("blpop failed: %w", err)
	}

	if err := json.Unmarshal([]byte(res[1]), &d); err != nil {
		return domain.Delivery{}, false, fmt.Errorf("invalid delivery payload: %w", err)
	}
	return d, true, nil
}

// QueueDepth reports the number of pending deliveries for target.
func (c *Client) QueueDepth(ctx context.Context, target string) (int64, error) {
	n, err := c.rdb.LLen(ctx, queueKey(target)).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return n, nil
}

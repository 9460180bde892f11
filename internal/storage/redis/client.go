package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(addr, password string, db int) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Wrap adapts an existing client, e.g. one built by redismock.
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("storage.redis.HealthCheck: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shop-backend/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	activeDealsKey = "deals:active"
	activeDealsTTL = 10 * time.Minute
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetActiveDeals rewrites the cached active-deals payload. The TTL bounds
// staleness if the scheduler stops refreshing it.
func (c *Client) SetActiveDeals(ctx context.Context, deals []models.Deal) error {
	payload, err := json.Marshal(deals)
	if err != nil {
		return fmt.Errorf("failed to marshal active deals: %w", err)
	}
	return c.rdb.Set(ctx, activeDealsKey, payload, activeDealsTTL).Err()
}

// GetActiveDeals reads the cached active-deals payload. The second return
// value is false on a cache miss.
func (c *Client) GetActiveDeals(ctx context.Context) ([]models.Deal, bool, error) {
	payload, err := c.rdb.Get(ctx, activeDealsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var deals []models.Deal
	if err := json.Unmarshal(payload, &deals); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal active deals: %w", err)
	}
	return deals, true, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-marketplace/internal/domain/lender"
)

const defaultCatalogKey = "lenders:catalog:v1"

// LenderCatalog stores the active lender list as a single JSON value.
type LenderCatalog struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewLenderCatalog(client *redis.Client, key string, ttl time.Duration) *LenderCatalog {
	if key == "" {
		key = defaultCatalogKey
	}
	return &LenderCatalog{client: client, key: key, ttl: ttl}
}

func (c *LenderCatalog) GetCatalog(ctx context.Context) ([]lender.Lender, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read lender catalog: %w", err)
	}

	var lenders []lender.Lender
	if err := json.Unmarshal(raw, &lenders); err != nil {
		return nil, false, fmt.Errorf("decode lender catalog: %w", err)
	}
	return lenders, true, nil
}

func (c *LenderCatalog) SetCatalog(ctx context.Context, lenders []lender.Lender) error {
	raw, err := json.Marshal(lenders)
	if err != nil {
		return fmt.Errorf("encode lender catalog: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write lender catalog: %w", err)
	}
	return nil
}

func (c *LenderCatalog) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidate lender catalog: %w", err)
	}
	return nil
}

// Package redis caché de lecturas de stock sobre go-redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	goredis "github.com/redis/go-redis/v9"
)

var _ ports.StockCache = (*StockCache)(nil)

const keyPrefix = "stock:"

// StockCache guarda instantáneas de stock con TTL.
// Solo sirve a lecturas; la invalidación ocurre tras cada commit que escribe en el libro.
type StockCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewStockCache construye la caché. ttl <= 0 usa 30s.
func NewStockCache(client *goredis.Client, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StockCache{client: client, ttl: ttl}
}

// Key clave de un producto.
func Key(productID string) string {
	return keyPrefix + productID
}

func (c *StockCache) Get(ctx context.Context, productID string) (*ports.StockSnapshot, error) {
	raw, err := c.client.Get(ctx, Key(productID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var snap ports.StockSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decodificar snapshot: %w", err)
	}
	return &snap, nil
}

func (c *StockCache) Set(ctx context.Context, snap ports.StockSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("codificar snapshot: %w", err)
	}
	if err := c.client.Set(ctx, Key(snap.ProductID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *StockCache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = Key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

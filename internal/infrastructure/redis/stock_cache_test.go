package redis

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "stock:abc", Key("abc"))
}

func TestNewStockCache_TTLPorDefecto(t *testing.T) {
	c := NewStockCache(nil, 0)
	assert.Equal(t, 30*time.Second, c.ttl)
}

// Sin servidor Redis las operaciones devuelven error; el caso de uso lo trata como fallo de caché.
func TestStockCache_SinServidor(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewStockCache(client, time.Second)
	ctx := context.Background()

	_, err := c.Get(ctx, "p1")
	assert.Error(t, err)
	err = c.Set(ctx, ports.StockSnapshot{ProductID: "p1", CurrentStock: decimal.NewFromInt(3)})
	assert.Error(t, err)
	require.NoError(t, c.Invalidate(ctx))
}

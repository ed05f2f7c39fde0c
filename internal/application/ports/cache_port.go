package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshot lectura cacheada del stock de un producto.
// Solo sirve a consultas; el accesor de stock siempre lee la fila bloqueada.
type StockSnapshot struct {
	ProductID    string          `json:"product_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	LowStock     bool            `json:"low_stock"`
	ReadAt       time.Time       `json:"read_at"`
}

// StockCache define el puerto de caché de lecturas de stock.
// Invalidate se llama únicamente desde el camino de escritura del libro, tras el commit.
type StockCache interface {
	Get(ctx context.Context, productID string) (*StockSnapshot, error) // (nil, nil) si no está
	Set(ctx context.Context, snapshot StockSnapshot) error
	Invalidate(ctx context.Context, productIDs ...string) error
}

// NopStockCache caché deshabilitada.
type NopStockCache struct{}

func (NopStockCache) Get(context.Context, string) (*StockSnapshot, error) { return nil, nil }
func (NopStockCache) Set(context.Context, StockSnapshot) error            { return nil }
func (NopStockCache) Invalidate(context.Context, ...string) error         { return nil }

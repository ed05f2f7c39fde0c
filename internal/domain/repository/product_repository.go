package repository

import (
	"context"

	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros para el listado de productos.
type ProductFilter struct {
	CategoryID string
	Search     string // coincidencia parcial en nombre o código
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las búsquedas devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update actualiza atributos de catálogo; nunca modifica CurrentStock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
	// UpdatePrices actualiza precio de venta y costo de compra (procesamiento de recepciones).
	UpdatePrices(ctx context.Context, id string, salePrice, purchasePrice decimal.Decimal) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error)
}

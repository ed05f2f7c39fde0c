package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// InitialStock > 0 se registra como movimiento de ajuste en el libro.
type CreateProductRequest struct {
	Code            string          `json:"code" validate:"required,min=1,max=64"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description" validate:"max=1000"`
	CategoryID      string          `json:"category_id" validate:"omitempty,uuid"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	InitialStock    decimal.Decimal `json:"initial_stock"`
	MinimumStock    decimal.Decimal `json:"minimum_stock"`
	MeasurementType string          `json:"measurement_type" validate:"omitempty,oneof=unit weight"`
}

// UpdateProductRequest entrada para actualizar un producto (nunca el stock).
type UpdateProductRequest struct {
	Code            *string          `json:"code" validate:"omitempty,min=1,max=64"`
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=1000"`
	CategoryID      *string          `json:"category_id" validate:"omitempty,uuid"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	MinimumStock    *decimal.Decimal `json:"minimum_stock"`
	MeasurementType *string          `json:"measurement_type" validate:"omitempty,oneof=unit weight"`
	Active          *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	CategoryID      string          `json:"category_id,omitempty"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	MinimumStock    decimal.Decimal `json:"minimum_stock"`
	MeasurementType string          `json:"measurement_type"`
	Active          bool            `json:"active"`
	LowStock        bool            `json:"low_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// StockResponse lectura de stock de un producto (puede venir de caché).
type StockResponse struct {
	ProductID    string          `json:"product_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	LowStock     bool            `json:"low_stock"`
	Cached       bool            `json:"cached"`
	ReadAt       time.Time       `json:"read_at"`
}
